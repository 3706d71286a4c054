// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

// MetadataProvider supplies the attributes of an input file that are
// recorded in its header.
type MetadataProvider interface {
	// Stat returns the metadata of the regular file at path. Other file
	// types fail with [ErrUnsupportedFileType].
	Stat(path string) (Metadata, error)
}

// OsMetadataProvider reads metadata from the local filesystem.
type OsMetadataProvider struct{}

// NewOsMetadataProvider creates a new [OsMetadataProvider].
func NewOsMetadataProvider() *OsMetadataProvider {
	return &OsMetadataProvider{}
}

// Stat returns the permission bits, owner, group, size and modification
// time of the file at path.
func (p *OsMetadataProvider) Stat(path string) (Metadata, error) {
	return statMetadata(path)
}

// unixSeconds clamps timestamps before the epoch, which the header cannot
// represent.
func unixSeconds(sec int64) uint64 {
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
