// Package keyfile reads and writes unsigned keys as text, one per line.
package keyfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

var errInvalidKey = errors.New("invalid key")

// Read parses keys from r. Each non-empty line holds one key in decimal or
// 0x-prefixed hex. Lines starting with '#' are comments.
func Read(r io.Reader) ([]uint64, error) {
	var keys []uint64
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, err := parseKey(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		keys = append(keys, key)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading keys: %w", err)
	}

	return keys, nil
}

func parseKey(s string) (uint64, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	key, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", errInvalidKey, s)
	}
	return key, nil
}

// ReadFile reads keys from the named file.
func ReadFile(filename string) ([]uint64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	keys, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return keys, nil
}

// Write writes keys to w in decimal, one per line.
func Write(w io.Writer, keys []uint64) error {
	bw := bufio.NewWriter(w)
	var num [20]byte
	for _, k := range keys {
		bw.Write(strconv.AppendUint(num[:0], k, 10))
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile replaces the named file with keys. Readers never observe a
// partially written file.
func WriteFile(filename string, keys []uint64) error {
	var buf bytes.Buffer
	if err := Write(&buf, keys); err != nil {
		return err
	}
	if err := atomic.WriteFile(filename, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}
