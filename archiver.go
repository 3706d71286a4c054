// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Archiver runs the archive operations with one [Config] and one shared
// [Validator]. It holds no per-call state and can be used concurrently on
// different archives.
type Archiver struct {
	cfg       *Config
	validator Validator
}

// NewArchiver creates an [Archiver]. A nil cfg uses [NewConfig] defaults.
func NewArchiver(cfg *Config) *Archiver {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Archiver{
		cfg:       cfg,
		validator: NewValidator(cfg.AllowedExtensions()...),
	}
}

// Config returns the configuration of the archiver.
func (a *Archiver) Config() *Config {
	return a.cfg
}

// Validate checks the extension and the structure of the archive at path
// without changing anything.
func (a *Archiver) Validate(ctx context.Context, path string) error {
	return a.run(ctx, OpValidate, path, func(td *TelemetryData) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return a.validator.Validate(path)
	})
}

// run wraps an operation with logging, error classification and telemetry.
// The hook sees failed operations as well.
func (a *Archiver) run(ctx context.Context, op Operation, path string, fn func(td *TelemetryData) error) (err error) {
	td := &TelemetryData{Operation: op}
	start := time.Now()
	a.cfg.Logger().Info("operation started", "op", op, "archive", path)

	defer func() {
		td.Duration = time.Since(start)
		if fi, serr := os.Stat(path); serr == nil {
			td.ArchiveSize = fi.Size()
		}
		a.cfg.TelemetryHook()(ctx, td)
	}()

	if err = newArchiveError(op, path, fn(td)); err != nil {
		td.Errors++
		td.LastError = err
		a.cfg.Logger().Error("operation failed", "op", op, "archive", path, "error", err)
		return err
	}

	a.cfg.Logger().Info("operation finished", "op", op, "archive", path, "duration", time.Since(start))
	return nil
}

// walk calls fn for every entry of an already validated archive, with the
// cursor placed at the start of the entry's payload. fn must consume or
// skip the payload and its padding. The context is checked between records.
func (a *Archiver) walk(ctx context.Context, path string, fn func(h *Header, c *blockCursor) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	c := newBlockCursor(f, fi.Size())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		off := c.pos
		block, err := c.nextHeader()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := ValidateHeader(block); err != nil {
			return fmt.Errorf("entry at offset %d: %w", off, err)
		}
		h, err := ParseHeader(block)
		if err != nil {
			return fmt.Errorf("entry at offset %d: %w", off, err)
		}

		a.cfg.Logger().Debug("entry", "name", h.Name, "size", h.Size, "offset", off)
		if err := fn(h, c); err != nil {
			return err
		}
	}
}
