// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"errors"
	"fmt"
	"io"
)

// blockCursor walks an archive block by block. It tracks the offset itself
// so that skips can be checked against the archive size without seeking to
// the end.
type blockCursor struct {
	r     io.ReadSeeker
	size  int64
	pos   int64
	block [BlockSize]byte
}

func newBlockCursor(r io.ReadSeeker, size int64) *blockCursor {
	return &blockCursor{r: r, size: size}
}

// next reads the next block. It returns io.EOF if the archive ends on a
// block boundary and [ErrIncompleteBlock] if it ends inside a block. The
// returned slice is only valid until the next call.
func (c *blockCursor) next() ([]byte, error) {
	off := c.pos
	n, err := io.ReadFull(c.r, c.block[:])
	c.pos += int64(n)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: %d bytes at offset %d", ErrIncompleteBlock, n, off)
	case err != nil:
		return nil, fmt.Errorf("read block at offset %d: %w", off, err)
	}
	return c.block[:], nil
}

// nextHeader reads the next header block. The first all-zero block ends the
// entry stream and is reported as io.EOF, as is the end of the archive.
func (c *blockCursor) nextHeader() ([]byte, error) {
	block, err := c.next()
	if err != nil {
		return nil, err
	}
	if isZero(block) {
		return nil, io.EOF
	}
	return block, nil
}

// skip moves forward n bytes without reading them.
func (c *blockCursor) skip(n int64) error {
	if n == 0 {
		return nil
	}
	if n < 0 || n > c.size-c.pos {
		return fmt.Errorf("%w: need %d bytes at offset %d, archive has %d", ErrTruncatedPayload, n, c.pos, c.size)
	}
	if _, err := c.r.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	c.pos += n
	return nil
}

// skipPayload skips a payload of size bytes and its padding.
func (c *blockCursor) skipPayload(size int64) error {
	return c.skip(size + blockPadding(size))
}

// payload returns a reader over the next n bytes. The reader fails with
// [ErrTruncatedPayload] if the archive ends before n bytes were read.
func (c *blockCursor) payload(n int64) *payloadReader {
	return &payloadReader{c: c, remaining: n}
}

type payloadReader struct {
	c         *blockCursor
	remaining int64
}

func (p *payloadReader) Read(b []byte) (int, error) {
	if p.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(b)) > p.remaining {
		b = b[:p.remaining]
	}
	n, err := p.c.r.Read(b)
	p.c.pos += int64(n)
	p.remaining -= int64(n)
	if err == io.EOF && p.remaining > 0 {
		return n, fmt.Errorf("%w: %d bytes missing at offset %d", ErrTruncatedPayload, p.remaining, p.c.pos)
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}
