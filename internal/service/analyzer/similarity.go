package analyzer

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMinContentLength is the normalized character count below which a
// document is considered too short to score. Near-empty files otherwise
// produce spuriously high similarity.
const DefaultMinContentLength = 50

// Scorer computes a 0-100 similarity score for a pair of documents.
// Implementations are symmetric and pure.
type Scorer interface {
	Score(a, b Document) float64
	Method() string
}

// NewScorer selects the scoring method by config name.
func NewScorer(method string, minContentLength int) (Scorer, error) {
	if minContentLength <= 0 {
		minContentLength = DefaultMinContentLength
	}

	switch strings.ToLower(method) {
	case "", "cosine":
		return &cosineScorer{minContentLength: minContentLength}, nil
	case "jaccard":
		return &jaccardScorer{minContentLength: minContentLength}, nil
	default:
		return nil, fmt.Errorf("unsupported similarity method: %s", method)
	}
}

// cosineScorer scores the normalized dot product of two term-frequency
// vectors, scaled to 0-100 with two decimals.
type cosineScorer struct {
	minContentLength int
}

func (s *cosineScorer) Score(a, b Document) float64 {
	if a.Length < s.minContentLength || b.Length < s.minContentLength {
		return 0
	}
	if a.norm == 0 || b.norm == 0 {
		return 0
	}

	// Only terms in both vectors contribute to the dot product.
	small, large := a.Terms, b.Terms
	if len(large) < len(small) {
		small, large = large, small
	}

	var dot float64
	for term, countA := range small {
		if countB, ok := large[term]; ok {
			dot += float64(countA) * float64(countB)
		}
	}

	return round2(dot / (a.norm * b.norm) * 100)
}

func (s *cosineScorer) Method() string { return "cosine" }

// jaccardScorer scores token-set overlap: |A∩B| / |A∪B|. Cheaper than cosine
// and ignores term frequency; kept as a config-selectable alternative.
type jaccardScorer struct {
	minContentLength int
}

func (s *jaccardScorer) Score(a, b Document) float64 {
	if a.Length < s.minContentLength || b.Length < s.minContentLength {
		return 0
	}
	if len(a.Terms) == 0 || len(b.Terms) == 0 {
		return 0
	}

	small, large := a.Terms, b.Terms
	if len(large) < len(small) {
		small, large = large, small
	}

	var intersection int
	for term := range small {
		if _, ok := large[term]; ok {
			intersection++
		}
	}

	union := len(a.Terms) + len(b.Terms) - intersection
	if union == 0 {
		return 0
	}

	return round2(float64(intersection) / float64(union) * 100)
}

func (s *jaccardScorer) Method() string { return "jaccard" }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
