// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"io"
	"io/fs"
	"time"
)

// Target specifies all functions needed to write extracted entries. The
// disk implementation is [TargetDisk], [TargetMemory] keeps everything in
// memory.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error wrapping
	// [ErrFileExists] should be returned. The size of the file should not exceed maxSize. The number of bytes
	// written is returned, also along with an error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates at the specified path with the specified mode, including parents. If the directory
	// already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// Lstat see docs for os.Lstat. Main purpose is to detect existing files and symlinks at an output path.
	Lstat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod. Main purpose is to restore the permission bits of a file.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes. Main purpose is to restore the modification time of a file.
	Chtimes(name string, atime, mtime time.Time) error

	// Chown see docs for os.Chown. Main purpose is to restore the owner and group of a file.
	Chown(name string, uid, gid int) error
}
