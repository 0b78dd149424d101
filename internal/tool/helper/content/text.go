// Package content holds pure helpers for inspecting and shaping text payloads.
package content

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// binarySampleSize matches Git's heuristic: a NUL byte in the first 8000 bytes means binary.
const binarySampleSize = 8000

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
)

// IsBinary reports whether data looks like binary content.
// UTF-16 and UTF-32 BOMs are treated as text even though they contain NUL bytes.
func IsBinary(data []byte) bool {
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) || bytes.HasPrefix(data, bomUTF32BE) {
		return false
	}
	sample := data[:min(len(data), binarySampleSize)]
	return bytes.IndexByte(sample, 0) >= 0
}

// SplitLines splits on \n and \r\n. A trailing newline does not produce an empty last line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// TruncateRunes cuts s to at most n runes and reports whether anything was cut.
func TruncateRunes(s string, n int) (string, bool) {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}

// SplitLinesKeepEnds splits s after each \n, keeping every terminator so the
// pieces concatenate back to s exactly.
func SplitLinesKeepEnds(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// LineEnding returns the terminator at the end of line: "\r\n", "\n" or "".
func LineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}
