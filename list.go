// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"io/fs"
	"time"

	"github.com/samber/lo"
)

// Entry describes one archived file as recorded in its header.
type Entry struct {
	Name    string
	Size    uint64
	Mode    uint64
	Uid     uint64
	Gid     uint64
	ModTime uint64
}

func newEntry(h *Header) Entry {
	return Entry{
		Name:    h.Name,
		Size:    h.Size,
		Mode:    h.Mode,
		Uid:     h.Uid,
		Gid:     h.Gid,
		ModTime: h.ModTime,
	}
}

// FileMode converts the recorded permission bits, including setuid, setgid
// and sticky, to an [fs.FileMode].
func (e Entry) FileMode() fs.FileMode {
	m := fs.FileMode(e.Mode & 0o777)
	if e.Mode&0o4000 != 0 {
		m |= fs.ModeSetuid
	}
	if e.Mode&0o2000 != 0 {
		m |= fs.ModeSetgid
	}
	if e.Mode&0o1000 != 0 {
		m |= fs.ModeSticky
	}
	return m
}

// Time returns the modification time.
func (e Entry) Time() time.Time {
	return time.Unix(int64(e.ModTime), 0)
}

// List returns the entries of the archive in on-disk order. Listing reads
// headers only and does not change the archive.
func (a *Archiver) List(ctx context.Context, archivePath string) ([]Entry, error) {
	entries := []Entry{}
	err := a.run(ctx, OpList, archivePath, func(td *TelemetryData) error {
		if err := a.validator.Validate(archivePath); err != nil {
			return err
		}
		return a.walk(ctx, archivePath, func(h *Header, c *blockCursor) error {
			entries = append(entries, newEntry(h))
			td.EntriesListed++
			return c.skipPayload(int64(h.Size))
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListNames returns the entry names of the archive in on-disk order.
func (a *Archiver) ListNames(ctx context.Context, archivePath string) ([]string, error) {
	entries, err := a.List(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e Entry, _ int) string {
		return e.Name
	}), nil
}
