// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"context"
	"encoding/json"
	"time"
)

// Operation names an archive operation.
type Operation string

const (
	OpCreate   Operation = "create"
	OpList     Operation = "list"
	OpExtract  Operation = "extract"
	OpAppend   Operation = "append"
	OpValidate Operation = "validate"
)

// TelemetryData holds all telemetry data of one archive operation.
type TelemetryData struct {
	// Operation is the operation that produced the data
	Operation Operation `json:"operation"`

	// ArchiveSize is the size of the archive after the operation
	ArchiveSize int64 `json:"archive_size"`

	// BytesArchived is the payload size written by create or append
	BytesArchived int64 `json:"bytes_archived"`

	// Duration is the time the operation took
	Duration time.Duration `json:"duration"`

	// EntriesAdded is the number of records written by create or append
	EntriesAdded int64 `json:"entries_added"`

	// EntriesListed is the number of entries returned by list
	EntriesListed int64 `json:"entries_listed"`

	// Errors is the number of errors during the operation
	Errors int64 `json:"errors"`

	// ExtractedFiles is the number of extracted files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractionSize is the size of the extracted files
	ExtractionSize int64 `json:"extraction_size"`

	// LastError is the last error during the operation
	LastError error `json:"last_error"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastError != nil {
		lastError = m.LastError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastError string `json:"last_error"`
		*Alias
	}{
		LastError: lastError,
		Alias:     (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after an operation has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)
