// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Metadata holds the attributes of a regular file that are stored in a
// header. Mode carries the permission bits only.
type Metadata struct {
	Mode    uint64
	Uid     uint64
	Gid     uint64
	Size    uint64
	ModTime uint64
}

// Header is the decoded form of one header block.
type Header struct {
	Name string
	Metadata
}

// numericFields pairs every octal span with its value in a header.
func numericFields(md *Metadata) []struct {
	span
	v *uint64
} {
	return []struct {
		span
		v *uint64
	}{
		{fieldMode, &md.Mode},
		{fieldUid, &md.Uid},
		{fieldGid, &md.Gid},
		{fieldSize, &md.Size},
		{fieldModTime, &md.ModTime},
	}
}

// BuildHeader encodes name and md as a ustar header block for a regular
// file, including its checksum.
func BuildHeader(name string, md Metadata) ([BlockSize]byte, error) {
	var block [BlockSize]byte
	if err := checkName(name); err != nil {
		return [BlockSize]byte{}, &HeaderError{Field: fieldName.name, Err: err}
	}
	copy(fieldName.of(block[:]), name)

	for _, f := range numericFields(&md) {
		if err := formatOctal(f.of(block[:]), *f.v); err != nil {
			return [BlockSize]byte{}, &HeaderError{Field: f.name, Err: err}
		}
	}

	block[fieldTypeflag.offset] = TypeRegular
	copy(fieldMagic.of(block[:]), magic)
	copy(fieldVersion.of(block[:]), version)

	// terminated by NUL then space; the sum never exceeds six octal digits
	chksum := fieldChecksum.of(block[:])
	if err := formatOctal(chksum[:7], Checksum(block[:])); err != nil {
		return [BlockSize]byte{}, &HeaderError{Field: fieldChecksum.name, Err: err}
	}
	chksum[7] = ' '

	return block, nil
}

// ParseHeader decodes a header block. It does not verify the checksum or
// the magic, use [ValidateHeader] for that.
func ParseHeader(block []byte) (*Header, error) {
	if len(block) != BlockSize {
		return nil, &HeaderError{Err: fmt.Errorf("%w: got %d bytes", ErrInvalidBlockSize, len(block))}
	}

	name := bytes.TrimRight(fieldName.of(block), "\x00")
	if !utf8.Valid(name) {
		return nil, &HeaderError{Field: fieldName.name, Err: ErrInvalidEncoding}
	}

	h := &Header{Name: string(name)}
	for _, f := range numericFields(&h.Metadata) {
		v, err := parseOctal(f.of(block))
		if err != nil {
			return nil, &HeaderError{Field: f.name, Err: err}
		}
		*f.v = v
	}
	return h, nil
}

// ValidateHeader verifies the checksum and the ustar magic and version of
// a header block. The checksum is checked first.
func ValidateHeader(block []byte) error {
	if len(block) != BlockSize {
		return &HeaderError{Err: fmt.Errorf("%w: got %d bytes", ErrInvalidBlockSize, len(block))}
	}

	declared, err := parseOctal(fieldChecksum.of(block))
	if err != nil {
		return &HeaderError{Field: fieldChecksum.name, Err: fmt.Errorf("%w: %v", ErrChecksumMismatch, err)}
	}
	if computed := Checksum(block); declared != computed {
		return &HeaderError{
			Field: fieldChecksum.name,
			Err:   fmt.Errorf("%w: declared %o, computed %o", ErrChecksumMismatch, declared, computed),
		}
	}

	if string(fieldMagic.of(block)) != magic || string(fieldVersion.of(block)) != version {
		return &HeaderError{Field: fieldMagic.name, Err: ErrInvalidHeaderFormat}
	}
	return nil
}

// Checksum returns the unsigned sum of all bytes of block, counting the
// checksum field itself as ASCII spaces.
func Checksum(block []byte) uint64 {
	var sum uint64
	for i, c := range block {
		if i >= fieldChecksum.offset && i < fieldChecksum.offset+fieldChecksum.length {
			c = ' '
		}
		sum += uint64(c)
	}
	return sum
}

// checkName rejects names that cannot be stored as a single base name.
func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidFileName)
	case len(name) > NameSize:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidFileName, name, NameSize)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidFileName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidFileName, name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFileName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}
