package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bzippedTypeDecl is "(type a_t)" compressed with bzip2 -9. The standard
// library's compress/bzip2 package only implements a reader, so this
// fixture is a real, externally-produced bzip2 stream rather than one
// round-tripped through Go.
var bzippedTypeDecl = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0x17, 0x1b,
	0x10, 0xda, 0x00, 0x00, 0x00, 0x93, 0x80, 0x40, 0x60, 0x00, 0x00, 0xa2,
	0x00, 0x44, 0x20, 0x20, 0x00, 0x22, 0x00, 0xcd, 0x42, 0x0c, 0x98, 0x8e,
	0xc6, 0xb5, 0x80, 0xbc, 0x5d, 0xc9, 0x14, 0xe1, 0x42, 0x40, 0x5c, 0x6c,
	0x43, 0x68,
}

func TestReadInputPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.cil")
	require.NoError(t, os.WriteFile(path, []byte("(type a_t)"), 0o644))

	got, err := readInput(path)
	require.NoError(t, err)
	assert.Equal(t, "(type a_t)", string(got))
}

func TestReadInputDecompressesBzip2(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.cil.bz2")
	require.NoError(t, os.WriteFile(path, bzippedTypeDecl, 0o644))

	got, err := readInput(path)
	require.NoError(t, err)
	assert.Equal(t, "(type a_t)", string(got))
}

func TestReadInputMissingFileErrors(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "missing.cil"))
	assert.Error(t, err)
}

func TestPreflightAggregatesBothSidesFailures(t *testing.T) {
	err := preflight(filepath.Join(t.TempDir(), "left-missing.cil"), filepath.Join(t.TempDir(), "right-missing.cil"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "left-missing.cil")
	assert.Contains(t, err.Error(), "right-missing.cil")
}

func TestPreflightPassesForValidInputs(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left.cil")
	right := filepath.Join(dir, "right.cil")
	require.NoError(t, os.WriteFile(left, []byte("(type a_t)"), 0o644))
	require.NoError(t, os.WriteFile(right, []byte("(type b_t)"), 0o644))

	assert.NoError(t, preflight(left, right))
}

func TestLoadBothParsesBothSides(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left.cil")
	right := filepath.Join(dir, "right.cil")
	require.NoError(t, os.WriteFile(left, []byte("(type a_t)"), 0o644))
	require.NoError(t, os.WriteFile(right, []byte("(type b_t)"), 0o644))

	leftAST, rightAST, err := loadBoth(left, right)
	require.NoError(t, err)
	assert.NotNil(t, leftAST)
	assert.NotNil(t, rightAST)
}
