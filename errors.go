// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"errors"
	"fmt"
)

// Header codec errors. They are returned wrapped in a [*HeaderError], except
// ErrUnsupportedFileType which comes from the [MetadataProvider].
var (
	// ErrInvalidFileName is returned if a name is empty, longer than
	// [NameSize] bytes, not valid UTF-8 or contains a path separator.
	ErrInvalidFileName = errors.New("invalid file name")

	// ErrFieldOverflow is returned if a value does not fit its octal field.
	ErrFieldOverflow = errors.New("value does not fit header field")

	// ErrInvalidNumber is returned if a numeric field is not an octal numeral.
	ErrInvalidNumber = errors.New("invalid octal number")

	// ErrInvalidEncoding is returned if the name field is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 text")

	// ErrChecksumMismatch is returned if the declared checksum does not match
	// the header bytes.
	ErrChecksumMismatch = errors.New("header checksum mismatch, possibly corrupted")

	// ErrInvalidHeaderFormat is returned if magic or version are not ustar.
	ErrInvalidHeaderFormat = errors.New("invalid ustar header format")

	// ErrInvalidBlockSize is returned if a header block is not [BlockSize] bytes.
	ErrInvalidBlockSize = errors.New("header block is not 512 bytes")

	// ErrUnsupportedFileType is returned for inputs that are not regular files.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Archive validation errors. They are returned wrapped in a [*ValidationError].
var (
	// ErrInvalidExtension is returned if the archive name has an extension
	// that is not allowed.
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrArchiveTooSmall is returned for files shorter than [EndMarkerSize].
	ErrArchiveTooSmall = errors.New("archive too small")

	// ErrIncompleteBlock is returned if a block could not be read completely.
	ErrIncompleteBlock = errors.New("incomplete block")

	// ErrInvalidStructure is returned if a header inside the archive is invalid.
	ErrInvalidStructure = errors.New("invalid archive structure")

	// ErrTruncatedPayload is returned if an entry declares more payload than
	// the archive holds.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrMissingEndMarker is returned if the last [EndMarkerSize] bytes are not zero.
	ErrMissingEndMarker = errors.New("archive missing proper zero padding at end")
)

// Archive operation errors.
var (
	// ErrFileExists is returned by extraction if the output file exists and
	// overwrite is disabled.
	ErrFileExists = errors.New("file exists and overwrite is disabled")

	// ErrSizeChanged is returned if an input file changed its size while it
	// was archived.
	ErrSizeChanged = errors.New("file size changed during archiving")

	// ErrMaxFilesExceeded is returned if the maximum number of files is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded is returned if the maximum extraction size is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")
)

// HeaderError is returned by the header codec. Field names the header field
// that failed, if any.
type HeaderError struct {
	Field string
	Err   error
}

func (e *HeaderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("header: %v", e.Err)
	}
	return fmt.Sprintf("header field %s: %v", e.Field, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// ValidationError is returned if an archive is rejected before an operation
// touches it.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies the origin of an [*ArchiveError].
type ErrorKind int

const (
	// KindIO is an underlying read, write, seek, open or create failure.
	KindIO ErrorKind = iota

	// KindValidation is an archive that failed extension or structure validation.
	KindValidation

	// KindHeader is a header that could not be built or parsed.
	KindHeader

	// KindTarget is an extraction target that refused a file.
	KindTarget

	// KindLimit is an exceeded extraction limit.
	KindLimit

	// KindCanceled is a canceled or expired context.
	KindCanceled

	// KindInput is an input file that cannot be archived as it is.
	KindInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindValidation:
		return "validation"
	case KindHeader:
		return "header"
	case KindTarget:
		return "target"
	case KindLimit:
		return "limit"
	case KindCanceled:
		return "canceled"
	case KindInput:
		return "input"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ArchiveError is returned by every archive operation. Kind tells callers
// where the failure originated, the wrapped error keeps the detail.
type ArchiveError struct {
	Op   Operation
	Path string
	Kind ErrorKind
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%s %s: %s error: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// newArchiveError wraps err for the operation boundary.
func newArchiveError(op Operation, path string, err error) error {
	if err == nil {
		return nil
	}
	var ae *ArchiveError
	if errors.As(err, &ae) {
		return err
	}
	return &ArchiveError{Op: op, Path: path, Kind: classify(err), Err: err}
}

// classify derives the ErrorKind of err. Validation wins over header since
// structural failures embed the offending header error.
func classify(err error) ErrorKind {
	var ve *ValidationError
	var he *HeaderError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &he):
		return KindHeader
	case errors.Is(err, ErrTruncatedPayload):
		return KindValidation
	case errors.Is(err, ErrUnsupportedFileType), errors.Is(err, ErrSizeChanged):
		return KindInput
	case errors.Is(err, ErrFileExists):
		return KindTarget
	case errors.Is(err, ErrMaxFilesExceeded), errors.Is(err, ErrMaxExtractionSizeExceeded):
		return KindLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindIO
	}
}
