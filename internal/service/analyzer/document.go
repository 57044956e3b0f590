package analyzer

import "math"

// Document is the precomputed term-frequency vector of one extracted file.
// Building it once per file keeps the all-pairs scan from re-normalizing the
// same text for every pair it participates in.
type Document struct {
	// Length is the normalized character count, used by the
	// minimum-content guard.
	Length int
	// Terms maps each token to its occurrence count.
	Terms map[string]int

	norm float64
}

func NewDocument(text string) Document {
	normalized := Normalize(text)
	tokens := Tokenize(normalized)

	terms := make(map[string]int, len(tokens))
	for _, token := range tokens {
		terms[token]++
	}

	var sumSquares float64
	for _, count := range terms {
		sumSquares += float64(count) * float64(count)
	}

	return Document{
		Length: len(normalized),
		Terms:  terms,
		norm:   math.Sqrt(sumSquares),
	}
}
