// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar_test

import (
	"fmt"
	"testing"
	"time"

	ustar "github.com/hashicorp/go-ustar"
)

// TestDataString tests the String method of the data struct
func TestDataString(t *testing.T) {
	m := ustar.TelemetryData{
		Operation:      ustar.OpExtract,
		ArchiveSize:    2048,
		Duration:       time.Duration(5 * time.Millisecond),
		Errors:         1,
		ExtractedFiles: 1,
		ExtractionSize: 5,
		LastError:      fmt.Errorf("example error"),
	}

	expected := `{"last_error":"example error","operation":"extract","archive_size":2048,"bytes_archived":0,"duration":5000000,"entries_added":0,"entries_listed":0,"errors":1,"extracted_files":1,"extraction_size":5}`
	if m.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, m.String())
	}
}

// TestDataStringNoError tests that a missing error is rendered as empty string
func TestDataStringNoError(t *testing.T) {
	m := ustar.TelemetryData{Operation: ustar.OpList, EntriesListed: 3}

	expected := `{"last_error":"","operation":"list","archive_size":0,"bytes_archived":0,"duration":0,"entries_added":0,"entries_listed":3,"errors":0,"extracted_files":0,"extraction_size":0}`
	if m.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, m.String())
	}
}
