// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	ustar "github.com/hashicorp/go-ustar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteListing(t *testing.T) {
	entries := []ustar.Entry{
		{Name: "x.txt", Size: 5, Mode: 0o644, Uid: 1000, Gid: 100, ModTime: 0},
		{Name: "big.bin", Size: 2_500_000, Mode: 0o4755},
	}

	var short bytes.Buffer
	require.NoError(t, writeListing(&short, entries, false))
	assert.Equal(t, "x.txt\nbig.bin\n", short.String())

	var long bytes.Buffer
	require.NoError(t, writeListing(&long, entries, true))
	lines := strings.Split(strings.TrimRight(long.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "-rw-r--r--")
	assert.Contains(t, lines[0], "1000/100")
	assert.Contains(t, lines[0], "5B")
	assert.Contains(t, lines[0], "1970-01-01 00:00")
	assert.True(t, strings.HasSuffix(lines[0], "x.txt"))
	assert.Contains(t, lines[1], "urwxr-xr-x")
	assert.Contains(t, lines[1], "2.5MB")
}

func TestVerifyAll(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	a := ustar.NewArchiver(nil)

	good := filepath.Join(dir, "good.tar")
	require.NoError(t, a.Create(ctx, good, nil))

	bad := filepath.Join(dir, "bad.tar")
	require.NoError(t, os.WriteFile(bad, make([]byte, 1000), 0o644))

	results := verifyAll(ctx, a, []string{good, bad, good}, 2)
	require.Len(t, results, 3)
	assert.NoError(t, results[0])
	assert.ErrorIs(t, results[1], ustar.ErrArchiveTooSmall)
	assert.NoError(t, results[2])
}

// runCLI parses args and runs the selected command like the binary does.
// It returns the command output and the operations reported to telemetry.
func runCLI(t *testing.T, args ...string) (string, []ustar.Operation, error) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli, "test", kong.Exit(func(code int) {
		t.Fatalf("unexpected exit with code %d", code)
	}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	var ops []ustar.Operation
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rc := &runContext{
		ctx:    context.Background(),
		logger: logger,
		stdout: &out,
		options: cli.configOptions(logger, func(ctx context.Context, td *ustar.TelemetryData) {
			ops = append(ops, td.Operation)
		}),
	}
	err = kctx.Run(rc)
	return out.String(), ops, err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	x := filepath.Join(dir, "x.txt")
	y := filepath.Join(dir, "y.txt")
	require.NoError(t, os.WriteFile(x, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(y, []byte("world!"), 0o600))
	archive := filepath.Join(dir, "a.tar")

	// repeated files are archived once per argument, in argument order
	_, ops, err := runCLI(t, "create", archive, y, x, y)
	require.NoError(t, err)
	assert.Equal(t, []ustar.Operation{ustar.OpCreate}, ops)

	out, _, err := runCLI(t, "list", archive)
	require.NoError(t, err)
	assert.Equal(t, "y.txt\nx.txt\ny.txt\n", out)

	_, _, err = runCLI(t, "append", archive, x, x)
	require.NoError(t, err)

	out, _, err = runCLI(t, "list", "-l", archive)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "-rw-------")
	assert.True(t, strings.HasSuffix(lines[4], "x.txt"))

	dest := filepath.Join(dir, "out")
	_, _, err = runCLI(t, "extract", archive, dest)
	require.ErrorIs(t, err, ustar.ErrFileExists)

	_, ops, err = runCLI(t, "extract", "-O", archive, dest)
	require.NoError(t, err)
	assert.Equal(t, []ustar.Operation{ustar.OpExtract}, ops)
	got, err := os.ReadFile(filepath.Join(dest, "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world!", string(got))

	out, ops, err = runCLI(t, "verify", archive, archive)
	require.NoError(t, err)
	assert.Equal(t, archive+": OK\n", out)
	assert.Equal(t, []ustar.Operation{ustar.OpValidate}, ops)
}

func TestCommandsRejectExtension(t *testing.T) {
	dir := t.TempDir()
	x := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(x, []byte("hello"), 0o644))

	_, _, err := runCLI(t, "create", filepath.Join(dir, "a.zip"), x)
	require.ErrorIs(t, err, ustar.ErrInvalidExtension)

	_, _, err = runCLI(t, "--ext", "zip", "create", filepath.Join(dir, "a.zip"), x)
	require.NoError(t, err)
}
