// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package ustar

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Chtimes changes the access and modification times of the named file
// without following a symlink at name.
func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	return unix.Lutimes(name, []unix.Timeval{
		unixTimeval(atime),
		unixTimeval(mtime),
	})
}

// Chown changes the numeric uid and gid of the named file. Without root
// privileges the call is a no-op.
func (d *TargetDisk) Chown(name string, uid, gid int) error {
	if os.Geteuid() != 0 {
		return nil
	}
	if err := os.Lchown(name, uid, gid); err != nil {
		return fmt.Errorf("chown failed: %w", err)
	}
	return nil
}

// unixTimeval converts a time.Time to a unix.Timeval. Note that it always rounds
// up to the nearest microsecond, so even one nanosecond past the previous nanosecond
// will be rounded up to the next microsecond.
// See the implementation of unix.NsecToTimeval for details on how this happens.
func unixTimeval(t time.Time) unix.Timeval {
	return unix.NsecToTimeval(t.UnixNano())
}
