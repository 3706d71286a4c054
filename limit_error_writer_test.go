// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ustar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitErrorWriter(t *testing.T) {
	var buf bytes.Buffer
	w := limitWriter(&buf, 5)

	n, err := w.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = w.Write([]byte("defg"))
	assert.ErrorIs(t, err, ErrMaxExtractionSizeExceeded)
	assert.Equal(t, 2, n)
	assert.Equal(t, "abcde", buf.String())

	_, err = w.Write([]byte("h"))
	assert.ErrorIs(t, err, ErrMaxExtractionSizeExceeded)
}

func TestLimitWriterDisabled(t *testing.T) {
	var buf bytes.Buffer
	w := limitWriter(&buf, -1)
	assert.Same(t, &buf, w)
}
