package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

const (
	// MaxHashSize is the maximum number of bytes to hash from large arguments.
	MaxHashSize = 1024 * 1024 // 1MB
)

// HashContent computes the SHA-256 hash of the content and returns it as a
// hex-encoded string. For content exceeding MaxHashSize, only the first
// MaxHashSize bytes are hashed.
//
// Returns an empty string if content is empty.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	contentToHash := content
	if len(content) > MaxHashSize {
		contentToHash = content[:MaxHashSize]
	}

	hash := sha256.Sum256(contentToHash)
	return hex.EncodeToString(hash[:])
}

// TruncateString truncates a string to at most maxLen bytes, cutting on a
// rune boundary and appending "..." when something was removed.
// maxLen <= 0 disables truncation.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:runeBoundary(s, maxLen)]
	}

	return s[:runeBoundary(s, maxLen-3)] + "..."
}

func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
