package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"slices"
)

// CacheKey derives the deterministic store key for one resolution. Language
// and seller sets are sorted first so the key does not depend on
// configuration order.
func CacheKey(name string, languages, sellers []string) string {
	langs := slices.Clone(languages)
	slices.Sort(langs)
	sorted := slices.Clone(sellers)
	slices.Sort(sorted)

	h := sha256.New()
	io.WriteString(h, name)
	for _, lang := range langs {
		io.WriteString(h, "\x00"+lang)
	}
	io.WriteString(h, "\x01")
	for _, seller := range sorted {
		io.WriteString(h, "\x00"+seller)
	}
	return hex.EncodeToString(h.Sum(nil))
}
