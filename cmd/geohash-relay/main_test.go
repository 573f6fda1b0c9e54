package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ynniv/nip13-miner/internal/relay"
)

func writeRelayCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "relays.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunOrdersRelaysByDistance(t *testing.T) {
	path := writeRelayCSV(t, "wss://near.example.com,37.7749,-122.4194\n"+
		"wss://far.example.com,51.5074,-0.1278\n")

	nearest, err := run("9q8yy", path, true)
	require.NoError(t, err)
	require.Len(t, nearest, 2)
	require.Equal(t, "wss://near.example.com", nearest[0].URL)
}

func TestRunInvalidGeohashErrors(t *testing.T) {
	path := writeRelayCSV(t, "wss://near.example.com,37.7749,-122.4194\n")

	_, err := run("9q8a", path, true) // 'a' is not in the geohash alphabet
	require.Error(t, err)
}

func TestRunMissingCSVErrors(t *testing.T) {
	_, err := run("9q8yy", filepath.Join(t.TempDir(), "does-not-exist.csv"), true)
	require.Error(t, err)
}

func TestPrintNearestDoesNotPanic(t *testing.T) {
	// printNearest writes to stdout directly; this just exercises it for a
	// panic/crash regression on an empty and a populated slice, matching
	// the teacher's habit of smoke-testing print helpers.
	printNearest(nil, true)
	printNearest([]relay.Relay{{URL: "wss://relay.example.com", Distance: 1.5}}, false)
}
