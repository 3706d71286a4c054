// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

const (
	// BlockSize is the size of every header block and the unit all payloads
	// are padded to.
	BlockSize = 512

	// EndMarkerSize is the size of the all-zero region that terminates an archive.
	EndMarkerSize = 2 * BlockSize

	// NameSize is the maximum length of an entry name in bytes.
	NameSize = 100

	// TypeRegular is the typeflag of a regular file, the only type written.
	TypeRegular byte = '0'

	// magic and version identify the ustar dialect (POSIX.1-1988)
	magic   = "ustar\x00"
	version = "00"
)

// span is a named, fixed byte range of a header block. The same table is
// used to encode and to decode a header.
type span struct {
	name   string
	offset int
	length int
}

// of returns the bytes of block covered by s.
func (s span) of(block []byte) []byte {
	return block[s.offset : s.offset+s.length]
}

var (
	fieldName     = span{"name", 0, 100}
	fieldMode     = span{"mode", 100, 8}
	fieldUid      = span{"uid", 108, 8}
	fieldGid      = span{"gid", 116, 8}
	fieldSize     = span{"size", 124, 12}
	fieldModTime  = span{"mtime", 136, 12}
	fieldChecksum = span{"chksum", 148, 8}
	fieldTypeflag = span{"typeflag", 156, 1}
	fieldMagic    = span{"magic", 257, 6}
	fieldVersion  = span{"version", 263, 2}
)

var (
	zeroBlock [BlockSize]byte
	endMarker [EndMarkerSize]byte
)

// blockPadding returns the number of zero bytes needed after a payload of
// size bytes to reach the next block boundary, 0 <= n < BlockSize.
func blockPadding(size int64) int64 {
	return -size & (BlockSize - 1)
}

// isZero reports whether b consists of zero bytes only.
func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
