// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build linux

package ustar

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func statMetadata(path string) (Metadata, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Metadata{}, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return Metadata{}, fmt.Errorf("%w: %s is not a regular file", ErrUnsupportedFileType, path)
	}
	return Metadata{
		Mode:    uint64(st.Mode & 0o7777),
		Uid:     uint64(st.Uid),
		Gid:     uint64(st.Gid),
		Size:    uint64(st.Size),
		ModTime: unixSeconds(int64(st.Mtim.Sec)),
	}, nil
}
