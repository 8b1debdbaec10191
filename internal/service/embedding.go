package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding produces a small deterministic vector for a piece of
// text. It stands in for a real embedding model so that similarity search
// can run without an external dependency. The components are the total
// length, vowel count and consonant count.
func GenerateEmbedding(text string) pgvector.Vector {
	lower := strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range lower {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(len(text)), vowels, consonants})
}
