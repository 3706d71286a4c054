// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package ustar creates, lists, extracts and appends to uncompressed POSIX
// ustar archives that hold regular files only.
//
// An archive is a sequence of records, each a 512-byte header block followed
// by the file content padded to a multiple of 512 bytes, and ends with 1024
// zero bytes. The header codec is exposed as [BuildHeader], [ParseHeader] and
// [ValidateHeader]. Archive operations run through an [Archiver], which
// validates the archive name and structure before it touches the content.
//
// Configuration is done using the [Config], which is built with [NewConfig]
// and option functions such as [WithOverwrite] or [WithLogger]. Every
// operation reports [TelemetryData] to the configured [TelemetryHook].
// Extraction writes through a [Target], either [TargetDisk] or [TargetMemory].
package ustar
