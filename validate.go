// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtensionValidator checks the extension of an archive name against an
// allow-list. It never touches the file.
type ExtensionValidator struct {
	allowed []string
}

// NewExtensionValidator creates an [ExtensionValidator] for the given
// extensions. A leading dot is ignored and matching is case-insensitive.
func NewExtensionValidator(allowed ...string) ExtensionValidator {
	exts := make([]string, 0, len(allowed))
	for _, a := range allowed {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(a, ".")))
	}
	return ExtensionValidator{allowed: exts}
}

// Validate returns a [*ValidationError] wrapping [ErrInvalidExtension] if
// the extension of path is not allowed.
func (v ExtensionValidator) Validate(path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, a := range v.allowed {
		if a == ext {
			return nil
		}
	}
	return &ValidationError{Path: path, Err: fmt.Errorf("%w: %q, allowed %v", ErrInvalidExtension, ext, v.allowed)}
}

// StructureValidator checks that a file is a well formed archive: complete
// blocks, valid headers, payloads within bounds and a zero end marker.
type StructureValidator struct{}

// Validate opens path and scans it.
func (v StructureValidator) Validate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ValidationError{Path: path, Err: err}
	}
	defer f.Close()

	if err := scanStructure(f); err != nil {
		return &ValidationError{Path: path, Err: err}
	}
	return nil
}

func scanStructure(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	size := fi.Size()
	if size < EndMarkerSize {
		return fmt.Errorf("%w: %d bytes", ErrArchiveTooSmall, size)
	}

	// end is the offset right after the last record
	var end int64
	c := newBlockCursor(f, size)
	for {
		off := c.pos
		block, err := c.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if isZero(block) {
			continue
		}

		if err := ValidateHeader(block); err != nil {
			return fmt.Errorf("%w: block at offset %d: %w", ErrInvalidStructure, off, err)
		}
		h, err := ParseHeader(block)
		if err != nil {
			return fmt.Errorf("%w: block at offset %d: %w", ErrInvalidStructure, off, err)
		}
		if err := c.skipPayload(int64(h.Size)); err != nil {
			return err
		}
		end = c.pos
	}

	// the end marker must follow the records, payload bytes do not count
	if end > size-EndMarkerSize {
		return fmt.Errorf("%w: last record ends at offset %d, archive has %d bytes", ErrMissingEndMarker, end, size)
	}

	tail := make([]byte, EndMarkerSize)
	if _, err := f.ReadAt(tail, size-EndMarkerSize); err != nil {
		return fmt.Errorf("read end marker: %w", err)
	}
	if !isZero(tail) {
		return ErrMissingEndMarker
	}
	return nil
}

// Validator combines extension and structure validation. It is stateless
// and shared by all operations of an [Archiver].
type Validator struct {
	extension ExtensionValidator
	structure StructureValidator
}

// NewValidator creates a [Validator] accepting the given extensions.
func NewValidator(allowed ...string) Validator {
	return Validator{extension: NewExtensionValidator(allowed...)}
}

// ValidateExtension checks the archive name only.
func (v Validator) ValidateExtension(path string) error {
	return v.extension.Validate(path)
}

// ValidateStructure scans the archive.
func (v Validator) ValidateStructure(path string) error {
	return v.structure.Validate(path)
}

// Validate runs the extension check and then the structure scan.
func (v Validator) Validate(path string) error {
	if err := v.ValidateExtension(path); err != nil {
		return err
	}
	return v.ValidateStructure(path)
}
