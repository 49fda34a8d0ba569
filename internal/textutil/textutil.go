package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hex hash of a byte slice for deduplication.
func Hash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// HashString computes a SHA-256 hex hash of a string.
func HashString(s string) string {
	return Hash([]byte(s))
}

// NormalizeLabel lowercases a channel label and replaces spaces with
// underscores, e.g. "Total Counts" -> "total_counts".
func NormalizeLabel(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
