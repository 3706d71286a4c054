// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// TargetMemory is an in-memory [Target]. It maps slash separated paths, as
// accepted by [fs.ValidPath], to entries holding file information and data.
// Permissions are recorded but not enforced. Extracted files can be read
// back with [TargetMemory.Open] or [TargetMemory.ReadFile].
type TargetMemory struct {
	files sync.Map // map[string]*MemoryEntry
}

// NewTargetMemory creates a new in-memory target.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

// CreateFile stores src at path. If the overwrite flag is set to false and the file already exists,
// [ErrFileExists] is returned. The maxSize parameter limits the size of the file, a negative value
// disables the limit.
func (m *TargetMemory) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if !fs.ValidPath(path) {
		return 0, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		if !overwrite {
			return 0, fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		if e.(*MemoryEntry).FileInfo.IsDir() {
			return 0, fmt.Errorf("cannot replace directory %s", path)
		}
	}

	// create byte buffered writer
	var buf bytes.Buffer
	w := limitWriter(&buf, maxSize)

	// write to buffer
	n, err := io.Copy(w, src)
	if err != nil {
		return n, err
	}

	m.files.Store(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: filepath.Base(path), size: n, mode: mode, modTime: time.Now()},
		Data:     buf.Bytes(),
	})
	return n, nil
}

// CreateDir creates a new directory. If an entry already exists at path,
// nothing is done.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	m.files.LoadOrStore(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: filepath.Base(path), mode: mode.Perm() | fs.ModeDir, modTime: time.Now()},
	})
	return nil
}

// Lstat returns the FileInfo for the given path.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	me, err := m.load(path)
	if err != nil {
		return nil, err
	}
	return me.FileInfo, nil
}

// Chmod replaces the permission bits of the entry at name.
func (m *TargetMemory) Chmod(name string, mode fs.FileMode) error {
	return m.update(name, func(fi *MemoryFileInfo) {
		fi.mode = fi.mode.Type() | mode&^fs.ModeType
	})
}

// Chtimes sets the modification time of the entry at name. The access time
// is not tracked.
func (m *TargetMemory) Chtimes(name string, _, mtime time.Time) error {
	return m.update(name, func(fi *MemoryFileInfo) {
		fi.modTime = mtime
	})
}

// Chown records uid and gid for the entry at name.
func (m *TargetMemory) Chown(name string, uid, gid int) error {
	return m.update(name, func(fi *MemoryFileInfo) {
		fi.uid, fi.gid = uid, gid
	})
}

// Open opens the named file for reading. Directories cannot be opened.
func (m *TargetMemory) Open(path string) (fs.File, error) {
	me, err := m.load(path)
	if err != nil {
		return nil, err
	}
	if me.FileInfo.IsDir() {
		return nil, fmt.Errorf("cannot open directory %s", path)
	}

	// readers consume the copy, not the stored entry
	return &MemoryEntry{FileInfo: me.FileInfo, Data: me.Data}, nil
}

// ReadFile returns the content of the file at path.
func (m *TargetMemory) ReadFile(path string) ([]byte, error) {
	me, err := m.load(path)
	if err != nil {
		return nil, err
	}
	if me.FileInfo.IsDir() {
		return nil, fmt.Errorf("cannot read directory %s", path)
	}
	return me.Data, nil
}

// Paths returns all stored paths in lexical order.
func (m *TargetMemory) Paths() []string {
	var paths []string
	m.files.Range(func(k, _ any) bool {
		paths = append(paths, k.(string))
		return true
	})
	sort.Strings(paths)
	return paths
}

func (m *TargetMemory) load(path string) (*MemoryEntry, error) {
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	e, ok := m.files.Load(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	return e.(*MemoryEntry), nil
}

// update applies fn to a copy of the file information and stores it, so
// that readers holding the old entry are not affected.
func (m *TargetMemory) update(path string, fn func(*MemoryFileInfo)) error {
	me, err := m.load(path)
	if err != nil {
		return err
	}
	fi := *me.FileInfo
	fn(&fi)
	m.files.Store(path, &MemoryEntry{FileInfo: &fi, Data: me.Data})
	return nil
}

// MemoryEntry is an entry in the in-memory target. It implements [fs.File].
type MemoryEntry struct {
	FileInfo *MemoryFileInfo
	Data     []byte
}

func (me *MemoryEntry) Stat() (fs.FileInfo, error) {
	return me.FileInfo, nil
}

func (me *MemoryEntry) Read(p []byte) (int, error) {
	if len(me.Data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, me.Data)
	me.Data = me.Data[n:]
	return n, nil
}

func (me *MemoryEntry) Close() error {
	return nil
}

// MemoryFileInfo is a FileInfo implementation for the in-memory target
type MemoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	uid     int
	gid     int
}

// Name returns the name of the file
func (fi *MemoryFileInfo) Name() string {
	return fi.name
}

// Size returns the size of the file
func (fi *MemoryFileInfo) Size() int64 {
	return fi.size
}

// Mode returns the mode of the file
func (fi *MemoryFileInfo) Mode() fs.FileMode {
	return fi.mode
}

// ModTime returns the modification time of the file
func (fi *MemoryFileInfo) ModTime() time.Time {
	return fi.modTime
}

// IsDir returns true if the file is a directory
func (fi *MemoryFileInfo) IsDir() bool {
	return fi.mode.IsDir()
}

// Owner returns the uid and gid recorded with [TargetMemory.Chown].
func (fi *MemoryFileInfo) Owner() (uid, gid int) {
	return fi.uid, fi.gid
}

// Sys returns the underlying data source (nil for in-memory target)
func (fi *MemoryFileInfo) Sys() any {
	return nil
}
