// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Extract writes every entry of the archive into outputDir on disk.
func (a *Archiver) Extract(ctx context.Context, archivePath, outputDir string) error {
	return a.ExtractTo(ctx, NewTargetDisk(), archivePath, outputDir)
}

// ExtractTo writes every entry of the archive into outputDir of t. The
// archive is validated before anything is written and outputDir is created
// if missing. Existing files are refused with [ErrFileExists] unless
// overwrite is enabled. Entries extracted before a failure stay in place.
func (a *Archiver) ExtractTo(ctx context.Context, t Target, archivePath, outputDir string) error {
	return a.run(ctx, OpExtract, archivePath, func(td *TelemetryData) error {
		if err := a.validator.Validate(archivePath); err != nil {
			return err
		}
		if err := t.CreateDir(outputDir, a.cfg.CustomCreateDirMode()); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		return a.walk(ctx, archivePath, func(h *Header, c *blockCursor) error {
			return a.extractEntry(t, outputDir, h, c, td)
		})
	})
}

func (a *Archiver) extractEntry(t Target, outputDir string, h *Header, c *blockCursor, td *TelemetryData) error {
	size := int64(h.Size)

	// check limits before anything is written
	if err := a.cfg.CheckMaxFiles(td.ExtractedFiles + 1); err != nil {
		return err
	}
	if err := a.cfg.CheckExtractionSize(td.ExtractionSize + size); err != nil {
		return err
	}

	// names come from untrusted input and must stay inside outputDir
	if err := checkName(h.Name); err != nil {
		return &HeaderError{Field: fieldName.name, Err: err}
	}
	path := filepath.Join(outputDir, h.Name)

	if fi, err := t.Lstat(path); err == nil {
		if !a.cfg.Overwrite() {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("cannot replace %s: not a regular file", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalid path: %w", err)
	}

	e := newEntry(h)
	mode := a.cfg.CustomFileMode()
	if !a.cfg.DropFileAttributes() {
		mode = e.FileMode()
	}

	maxSize := int64(-1)
	if a.cfg.MaxExtractionSize() >= 0 {
		maxSize = a.cfg.MaxExtractionSize() - td.ExtractionSize
	}

	payload := c.payload(size)
	n, err := t.CreateFile(path, payload, mode, a.cfg.Overwrite(), maxSize)
	td.ExtractionSize += n
	if err != nil {
		return fmt.Errorf("extract %s: %w", h.Name, err)
	}
	if n != size {
		return fmt.Errorf("extract %s: %w: wrote %d of %d bytes", h.Name, ErrTruncatedPayload, n, size)
	}
	if err := c.skip(blockPadding(size)); err != nil {
		return err
	}
	td.ExtractedFiles++

	if !a.cfg.DropFileAttributes() {
		if err := t.Chmod(path, mode); err != nil {
			return fmt.Errorf("restore mode of %s: %w", path, err)
		}
		if err := t.Chtimes(path, e.Time(), e.Time()); err != nil {
			return fmt.Errorf("restore mtime of %s: %w", path, err)
		}
	}
	if a.cfg.PreserveOwner() {
		if err := t.Chown(path, int(h.Uid), int(h.Gid)); err != nil {
			return fmt.Errorf("restore owner of %s: %w", path, err)
		}
	}

	a.cfg.Logger().Debug("extracted", "name", h.Name, "size", n, "path", path)
	return nil
}
