// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"io"
	"os"
)

// Append adds files to the end of an existing archive. The archive is
// validated first. The records replace the end marker and a fresh end
// marker is written after them, also when files is empty.
func (a *Archiver) Append(ctx context.Context, archivePath string, files []string) error {
	return a.run(ctx, OpAppend, archivePath, func(td *TelemetryData) error {
		if err := a.validator.Validate(archivePath); err != nil {
			return err
		}
		return a.append(ctx, archivePath, files, td)
	})
}

func (a *Archiver) append(ctx context.Context, archivePath string, files []string, td *TelemetryData) (err error) {
	f, err := os.OpenFile(archivePath, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := f.Seek(-EndMarkerSize, io.SeekEnd); err != nil {
		return err
	}
	return a.writeRecords(ctx, f, files, td)
}
