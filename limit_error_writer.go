// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"fmt"
	"io"
)

// limitErrorWriter is a wrapper around an io.Writer that fails with
// [ErrMaxExtractionSizeExceeded] once the limit is reached.
type limitErrorWriter struct {
	W io.Writer // underlying writer
	L int64     // limit
	N int64     // number of bytes written
}

// Write writes up to len(p) bytes from p to the underlying data stream. Bytes
// beyond the limit are not written and an error is returned.
func (l *limitErrorWriter) Write(p []byte) (n int, err error) {
	// check if we reached the limit
	if l.N >= l.L && len(p) > 0 {
		return 0, fmt.Errorf("%w: limit of %d bytes reached", ErrMaxExtractionSizeExceeded, l.L)
	}

	// write until we reach the limit
	if int64(len(p)) > l.L-l.N {
		p = p[0 : l.L-l.N]
		n, err = l.W.Write(p)
		if err == nil {
			err = fmt.Errorf("%w: limit of %d bytes reached", ErrMaxExtractionSizeExceeded, l.L)
		}
		l.N += int64(n)
		return n, err
	}

	// write normally
	n, err = l.W.Write(p)
	l.N += int64(n)
	return n, err
}

// limitWriter returns a writer that fails after maxSize bytes. A negative
// maxSize disables the limit.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &limitErrorWriter{W: w, L: maxSize}
}
