// Package idgen produces human-memorable document identifiers.
//
// Identifiers are four words drawn independently from a fixed vocabulary. There is no
// uniqueness check against stored documents: with 48^4 (about 5.3M) combinations a
// collision is possible and callers accept that.
package idgen

import (
	"math/rand/v2"
	"strings"
)

// Words is the curated vocabulary identifiers are built from.
var Words = [...]string{
	"penguin", "giraffe", "walrus", "dolphin", "raccoon", "platypus", "octopus", "kangaroo",
	"waffle", "taco", "sushi", "pizza", "banana", "mango", "cookie", "pretzel",
	"pencil", "bucket", "hammer", "rocket", "basket", "camera", "compass", "ladder",
	"river", "mountain", "forest", "desert", "island", "volcano", "glacier", "canyon",
	"purple", "orange", "crimson", "azure", "golden", "silver", "scarlet", "emerald",
	"dancing", "jumping", "flying", "running", "sailing", "diving", "climbing", "floating",
}

const wordsPerID = 4

// Generate returns a new identifier such as "azure-taco-diving-canyon".
func Generate() string {
	parts := make([]string, wordsPerID)
	for i := range parts {
		parts[i] = Words[rand.IntN(len(Words))]
	}
	return strings.Join(parts, "-")
}
