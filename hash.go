package tercume

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText computes the SHA-256 hash of the exact text.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates the cache key for a (source text, source language,
// target language) triple.
func CacheKey(sourceText, sourceLang, targetLang string) string {
	return HashText(sourceText) + ":" + sourceLang + ":" + targetLang
}
