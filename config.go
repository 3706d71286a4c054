// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all options shared by the archive operations.
// The configuration options can be adjusted using the option pattern style.
//
// The defaults refuse to overwrite files and limit the amount of data an
// untrusted archive can unpack.
type Config struct {
	// allowedExtensions lists the accepted archive name extensions, without dot
	allowedExtensions []string

	// bufferSize is the chunk size used to stream payloads
	bufferSize int

	// customCreateDirMode is the file mode for created output directories (respecting umask)
	customCreateDirMode fs.FileMode

	// customFileMode is the file mode for extracted files if attributes are dropped (respecting umask)
	customFileMode fs.FileMode

	// dropFileAttributes is a flag drop the file attributes of the extracted files
	dropFileAttributes bool

	// logger stream for all operations
	logger logger

	// maxExtractionSize is the maximum size over all extracted files.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum of files in an archive.
	// Set value to -1 to disable the check.
	maxFiles int64

	// metadataProvider reads the attributes of input files
	metadataProvider MetadataProvider

	// Define if files should be overwritten in the destination
	overwrite bool

	// preserveOwner is a flag to preserve the owner of the extracted files
	preserveOwner bool

	// telemetryHook is a function to consume telemetry data after an operation finished
	// Important: do not adjust this value after an operation started
	telemetryHook TelemetryHook
}

// AllowedExtensions returns the accepted archive name extensions.
func (c *Config) AllowedExtensions() []string {
	return c.allowedExtensions
}

// BufferSize returns the chunk size used to stream payloads.
func (c *Config) BufferSize() int {
	return c.bufferSize
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {

	// check if disabled
	if c.MaxFiles() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {

	// check if disabled
	if c.MaxExtractionSize() == -1 {
		return nil
	}

	// check value
	if fileSize > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// CustomCreateDirMode returns the file mode for created output directories.
// (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomFileMode returns the file mode for extracted files if the file
// attributes are dropped. (respecting umask)
func (c *Config) CustomFileMode() fs.FileMode {
	return c.customFileMode
}

// DropFileAttributes returns true if the file attributes should be dropped.
func (c *Config) DropFileAttributes() bool {
	return c.dropFileAttributes
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of files in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MetadataProvider returns the provider for input file attributes.
func (c *Config) MetadataProvider() MetadataProvider {
	return c.metadataProvider
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// PreserveOwner returns true if the owner of the extracted files should
// be preserved. This option is only available on Unix systems requiring
// root privileges.
func (c *Config) PreserveOwner() bool {
	return c.preserveOwner
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultBufferSize          = 8 << 10       // 8 KiB chunks
	defaultCustomCreateDirMode = 0750          // default directory permissions rwxr-x---
	defaultCustomFileMode      = 0640          // default file permissions rw-r-----
	defaultDropFileAttributes  = false         // restore file attributes from archive
	defaultMaxFiles            = 100000        // 100k files
	defaultMaxExtractionSize   = 1 << (10 * 3) // 1 Gb
	defaultOverwrite           = false         // don't overwrite existing files
	defaultPreserveOwner       = false         // don't preserve owner
)

var (
	// plain tar only
	defaultAllowedExtensions = []string{"tar"}
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		allowedExtensions:   defaultAllowedExtensions,
		bufferSize:          defaultBufferSize,
		customCreateDirMode: defaultCustomCreateDirMode,
		customFileMode:      defaultCustomFileMode,
		dropFileAttributes:  defaultDropFileAttributes,
		logger:              defaultLogger,
		maxFiles:            defaultMaxFiles,
		maxExtractionSize:   defaultMaxExtractionSize,
		metadataProvider:    NewOsMetadataProvider(),
		overwrite:           defaultOverwrite,
		preserveOwner:       defaultPreserveOwner,
		telemetryHook:       defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithAllowedExtensions options pattern function to set the accepted archive
// name extensions. Matching is case-insensitive.
func WithAllowedExtensions(ext ...string) ConfigOption {
	return func(c *Config) {
		if len(ext) > 0 {
			c.allowedExtensions = ext
		}
	}
}

// WithBufferSize options pattern function to set the chunk size used to
// stream payloads. Values below one are ignored.
func WithBufferSize(size int) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created output directories. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomFileMode options pattern function to set the file mode for
// extracted files if the file attributes are dropped. (respecting umask)
func WithCustomFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customFileMode = mode
	}
}

// WithDropFileAttributes options pattern function to drop the
// file attributes of the extracted files.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) {
		c.dropFileAttributes = drop
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted
// files. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMetadataProvider options pattern function to replace the source of
// input file attributes.
func WithMetadataProvider(p MetadataProvider) ConfigOption {
	return func(c *Config) {
		if p != nil {
			c.metadataProvider = p
		}
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPreserveOwner options pattern function to preserve the owner of
// the extracted files. This option is only available on Unix systems
// requiring root privileges.
func WithPreserveOwner(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveOwner = preserve
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after every operation.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
