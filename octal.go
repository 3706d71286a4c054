// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"fmt"
	"strconv"
	"strings"
)

// formatOctal writes v into dst as a zero padded octal numeral of
// len(dst)-1 digits followed by a NUL terminator. Values that need more
// digits fail with ErrFieldOverflow, nothing is truncated.
func formatOctal(dst []byte, v uint64) error {
	digits := len(dst) - 1
	s := strconv.FormatUint(v, 8)
	if len(s) > digits {
		return fmt.Errorf("%w: %d needs %d octal digits, field holds %d", ErrFieldOverflow, v, len(s), digits)
	}
	n := copy(dst, strings.Repeat("0", digits-len(s)))
	copy(dst[n:], s)
	dst[digits] = 0
	return nil
}

// parseOctal reads an octal numeral padded with trailing NULs and
// surrounding whitespace.
func parseOctal(b []byte) (uint64, error) {
	s := strings.TrimSpace(strings.TrimRight(string(b), "\x00 "))
	if s == "" {
		return 0, fmt.Errorf("%w: empty field", ErrInvalidNumber)
	}
	v, err := strconv.ParseUint(s, 8, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}
