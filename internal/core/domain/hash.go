package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Hash is a hex-encoded SHA-256 content hash.
// Identical content always yields an identical hash, so hashes double as
// cache keys shared across documents and across runs.
type Hash string

// EmptyHash is the reserved hash for content that normalises to nothing.
// Hashing empty content is not an error.
const EmptyHash Hash = "0000000000000000000000000000000000000000000000000000000000000000"

// IsEmpty returns true for the reserved empty-content hash.
func (h Hash) IsEmpty() bool {
	return h == EmptyHash
}

// Short returns an abbreviated form for logs and UI display.
func (h Hash) Short() string {
	if len(h) < 8 {
		return string(h)
	}
	return string(h[:8])
}

// String returns the full hex representation.
func (h Hash) String() string {
	return string(h)
}

// NormalizeText canonicalises text before hashing: Unicode case folding,
// NFC normalisation, and whitespace collapsed to single spaces. Two texts
// that normalise identically share hashes, embeddings, and cache entries.
func NormalizeText(text string) string {
	folded := cases.Fold().String(text)
	composed := norm.NFC.String(folded)
	return strings.Join(strings.Fields(composed), " ")
}

// HashLeaf hashes text-bearing nodes (Nano words, Micro sentences).
// The text is normalised first; the level tag and content length are part
// of the hashed envelope so hashes never collide across levels.
func HashLeaf(level Level, text string) Hash {
	normalized := NormalizeText(text)
	if normalized == "" {
		return EmptyHash
	}
	return sumEnvelope(level, len(normalized), []byte(normalized))
}

// HashInterior hashes structural nodes (Meso, Macro, Mega) from the
// ordered sequence of their children's hashes. Order is significant:
// reordering children produces a different hash.
func HashInterior(level Level, children []Hash) Hash {
	if len(children) == 0 {
		return EmptyHash
	}
	var b strings.Builder
	for _, child := range children {
		b.WriteString(string(child))
		b.WriteByte('\n')
	}
	return sumEnvelope(level, len(children), []byte(b.String()))
}

// sumEnvelope computes sha256("<level> <n>\x00<payload>") as a hex Hash.
func sumEnvelope(level Level, n int, payload []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", level, n)
	sum := sha256.New()
	sum.Write([]byte(header))
	sum.Write(payload)
	return Hash(hex.EncodeToString(sum.Sum(nil)))
}
