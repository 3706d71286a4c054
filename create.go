// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Create writes a new archive at archivePath holding files in the given
// order. An existing archive is truncated. The archive name must carry an
// allowed extension. A failed call may leave a partial archive behind.
func (a *Archiver) Create(ctx context.Context, archivePath string, files []string) error {
	return a.run(ctx, OpCreate, archivePath, func(td *TelemetryData) error {
		if err := a.validator.ValidateExtension(archivePath); err != nil {
			return err
		}
		return a.create(ctx, archivePath, files, td)
	})
}

func (a *Archiver) create(ctx context.Context, archivePath string, files []string, td *TelemetryData) (err error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return a.writeRecords(ctx, f, files, td)
}

// writeRecords writes one record per file followed by a fresh end marker.
func (a *Archiver) writeRecords(ctx context.Context, w io.Writer, files []string, td *TelemetryData) error {
	buf := make([]byte, a.cfg.BufferSize())
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := a.writeRecord(w, path, buf)
		if err != nil {
			return err
		}
		td.EntriesAdded++
		td.BytesArchived += n
	}

	if _, err := w.Write(endMarker[:]); err != nil {
		return fmt.Errorf("write end marker: %w", err)
	}
	return nil
}

// writeRecord writes the header, the payload and the padding of one file
// and returns the payload size.
func (a *Archiver) writeRecord(w io.Writer, path string, buf []byte) (int64, error) {
	md, err := a.cfg.MetadataProvider().Stat(path)
	if err != nil {
		return 0, err
	}
	block, err := BuildHeader(filepath.Base(path), md)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if _, err := w.Write(block[:]); err != nil {
		return 0, fmt.Errorf("write header of %s: %w", path, err)
	}

	// hide ReaderFrom so that the payload is copied in buf sized chunks
	size := int64(md.Size)
	n, err := io.CopyBuffer(struct{ io.Writer }{w}, io.LimitReader(src, size), buf)
	if err != nil {
		return n, fmt.Errorf("write payload of %s: %w", path, err)
	}
	if n != size {
		return n, fmt.Errorf("%w: %s shrank from %d to %d bytes", ErrSizeChanged, path, size, n)
	}
	var extra [1]byte
	if m, _ := src.Read(extra[:]); m > 0 {
		return n, fmt.Errorf("%w: %s grew beyond %d bytes", ErrSizeChanged, path, size)
	}

	if _, err := w.Write(zeroBlock[:blockPadding(n)]); err != nil {
		return n, fmt.Errorf("write padding of %s: %w", path, err)
	}

	a.cfg.Logger().Debug("archived", "name", filepath.Base(path), "size", n, "mode", fmt.Sprintf("%04o", md.Mode))
	return n, nil
}
