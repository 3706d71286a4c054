// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar_test

import (
	"bytes"
	"io"
	"io/fs"
	"testing"
	"time"

	ustar "github.com/hashicorp/go-ustar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOpen(t *testing.T) {
	// instantiate a new memory target
	tm := ustar.NewTargetMemory()

	// create a file
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("test")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// open the file
	f, err := tm.Open("test")
	if err != nil {
		t.Fatalf("Open() failed: %s", err)
	}
	defer f.Close()

	// check the file permissions
	stat, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat() failed: %s", err)
	}
	if stat.Mode().Perm() != 0644 {
		t.Fatalf("Open() failed: expected %o, got %o", 0644, stat.Mode().Perm())
	}

	// read the file twice, the stored data is not consumed
	for i := 0; i < 2; i++ {
		f, err := tm.Open("test")
		require.NoError(t, err)
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "test", string(data))
	}

	// missing file
	if _, err := tm.Open("notexist"); err == nil {
		t.Fatalf("Open() should fail for a missing file")
	}
}

func TestMemoryCreateFile(t *testing.T) {
	tm := ustar.NewTargetMemory()

	_, err := tm.CreateFile("f", bytes.NewReader([]byte("one")), 0600, false, -1)
	require.NoError(t, err)

	_, err = tm.CreateFile("f", bytes.NewReader([]byte("two")), 0600, false, -1)
	assert.ErrorIs(t, err, ustar.ErrFileExists)

	n, err := tm.CreateFile("f", bytes.NewReader([]byte("three")), 0600, true, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = tm.CreateFile("g", bytes.NewReader([]byte("toolong")), 0600, false, 3)
	assert.ErrorIs(t, err, ustar.ErrMaxExtractionSizeExceeded)

	_, err = tm.CreateFile("/abs", bytes.NewReader(nil), 0600, false, -1)
	assert.ErrorIs(t, err, fs.ErrInvalid)

	require.NoError(t, tm.CreateDir("d", 0750))
	_, err = tm.CreateFile("d", bytes.NewReader(nil), 0600, true, -1)
	assert.Error(t, err)

	data, err := tm.ReadFile("f")
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))
}

func TestMemoryAttributes(t *testing.T) {
	tm := ustar.NewTargetMemory()
	require.NoError(t, tm.CreateDir("dir", 0750))
	_, err := tm.CreateFile("dir/f", bytes.NewReader([]byte("x")), 0600, false, -1)
	require.NoError(t, err)

	mtime := time.Unix(1700000000, 0)
	require.NoError(t, tm.Chmod("dir/f", 0755|fs.ModeSticky))
	require.NoError(t, tm.Chtimes("dir/f", mtime, mtime))
	require.NoError(t, tm.Chown("dir/f", 1000, 100))

	fi, err := tm.Lstat("dir/f")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0755)|fs.ModeSticky, fi.Mode())
	assert.True(t, fi.ModTime().Equal(mtime))
	uid, gid := fi.(*ustar.MemoryFileInfo).Owner()
	assert.Equal(t, 1000, uid)
	assert.Equal(t, 100, gid)

	dir, err := tm.Lstat("dir")
	require.NoError(t, err)
	assert.True(t, dir.IsDir())

	// a directory keeps its type
	require.NoError(t, tm.Chmod("dir", 0700))
	dir, err = tm.Lstat("dir")
	require.NoError(t, err)
	assert.True(t, dir.IsDir())

	_, err = tm.Lstat("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, tm.Chmod("missing", 0600), fs.ErrNotExist)
	_, err = tm.ReadFile("dir")
	assert.Error(t, err)

	assert.Equal(t, []string{"dir", "dir/f"}, tm.Paths())
}
