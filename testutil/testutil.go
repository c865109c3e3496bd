package testutil

import (
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
)

// GenerateTestKeyFile creates a temporary key file holding numKeys random
// keys, one per line. Every tenth key is written in hex and every hundredth
// line is followed by a comment so readers see the full input syntax.
// Returns the file path and the keys in file order.
func GenerateTestKeyFile(t *testing.T, numKeys int, seed int64) (string, []uint64) {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	keys := make([]uint64, numKeys)

	var content strings.Builder
	content.WriteString("# generated test keys\n")
	for i := range keys {
		keys[i] = rng.Uint64()
		if i%10 == 0 {
			content.WriteString("0x")
			content.WriteString(strconv.FormatUint(keys[i], 16))
		} else {
			content.WriteString(strconv.FormatUint(keys[i], 10))
		}
		content.WriteString("\n")
		if i%100 == 99 {
			content.WriteString("\n# block " + strconv.Itoa(i/100) + "\n")
		}
	}

	path := TempFilePath(t, "test_keys_*.txt")
	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		t.Fatalf("Failed to write temp key file: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })

	return path, keys
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t *testing.T, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}
