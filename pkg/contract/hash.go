package contract

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// MaxHashSize caps the number of bytes hashed from a symbol's defining
	// span. Spans larger than this are truncated before hashing.
	MaxHashSize = 1024 * 1024 // 1MB
)

// HashContent computes the hex-encoded SHA-256 hash of content, truncated
// at MaxHashSize. Empty content hashes to the empty string.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString hashes a string's bytes.
func HashString(content string) string {
	return HashContent([]byte(content))
}

// HashLines hashes the inclusive source line span [start, end] of a file's
// lines (1-based). Out-of-range spans clamp to the file.
func HashLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	var span string
	for i := start - 1; i < end; i++ {
		if i > start-1 {
			span += "\n"
		}
		span += lines[i]
	}
	return HashString(span)
}
