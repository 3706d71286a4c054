// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package ustar

import (
	"fmt"
	"io/fs"
	"os"
)

// statMetadata has no owner information on this platform, uid and gid are 0.
func statMetadata(path string) (Metadata, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	if !fi.Mode().IsRegular() {
		return Metadata{}, fmt.Errorf("%w: %s is not a regular file", ErrUnsupportedFileType, path)
	}
	mode := uint64(fi.Mode().Perm())
	if fi.Mode()&fs.ModeSetuid != 0 {
		mode |= 0o4000
	}
	if fi.Mode()&fs.ModeSetgid != 0 {
		mode |= 0o2000
	}
	if fi.Mode()&fs.ModeSticky != 0 {
		mode |= 0o1000
	}
	return Metadata{
		Mode:    mode,
		Size:    uint64(fi.Size()),
		ModTime: unixSeconds(fi.ModTime().Unix()),
	}, nil
}
