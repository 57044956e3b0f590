package analyzer

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// SubmissionDocs is one submission with every file already extracted and
// vectorized. Input to the corpus comparison; immutable during a run.
type SubmissionDocs struct {
	SubmissionID string
	StudentID    string
	StudentName  string
	Documents    []Document
}

// PairScore is the similarity verdict for one unordered submission pair,
// canonicalized so SubmissionAID < SubmissionBID.
type PairScore struct {
	SubmissionAID string
	StudentAID    string
	StudentAName  string
	SubmissionBID string
	StudentBID    string
	StudentBName  string
	Score         float64
}

// MaxFilePairScore reduces two multi-file submissions to one score: the
// maximum over the cartesian product of their files. A single matching file
// flags the pair; averaging would let unrelated bundled files dilute it.
func MaxFilePairScore(a, b []Document, scorer Scorer) float64 {
	var max float64
	for _, docA := range a {
		for _, docB := range b {
			if score := scorer.Score(docA, docB); score > max {
				max = score
			}
		}
	}
	return max
}

// CorpusComparator runs the all-pairs scan over one assignment's
// submissions. Complexity is O(N² · Fi · Fj) in submissions and their file
// counts, which is fine at classroom scale; pair comparisons are pure, so
// they fan out over a bounded set of goroutines.
type CorpusComparator struct {
	scorer     Scorer
	maxWorkers int
	logger     zerolog.Logger
}

func NewCorpusComparator(scorer Scorer, maxWorkers int, logger zerolog.Logger) *CorpusComparator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &CorpusComparator{
		scorer:     scorer,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// Compare scores every eligible unordered pair. Pairs from the same student
// are skipped (resubmissions are not plagiarism), as are submissions without
// files. Zero scores are discarded. The result is sorted by the canonical
// pair ids so identical input always yields an identical match set.
func (c *CorpusComparator) Compare(corpus []SubmissionDocs) []PairScore {
	type pairIndex struct{ i, j int }

	var pairs []pairIndex
	for i := 0; i < len(corpus); i++ {
		for j := i + 1; j < len(corpus); j++ {
			if corpus[i].StudentID == corpus[j].StudentID {
				continue
			}
			if len(corpus[i].Documents) == 0 || len(corpus[j].Documents) == 0 {
				continue
			}
			pairs = append(pairs, pairIndex{i, j})
		}
	}

	if len(pairs) == 0 {
		return nil
	}

	tasks := make(chan pairIndex)
	var (
		mu      sync.Mutex
		results []PairScore
		wg      sync.WaitGroup
	)

	workers := c.maxWorkers
	if workers > len(pairs) {
		workers = len(pairs)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range tasks {
				a, b := corpus[p.i], corpus[p.j]

				score := MaxFilePairScore(a.Documents, b.Documents, c.scorer)
				if score <= 0 {
					continue
				}

				result := PairScore{
					SubmissionAID: a.SubmissionID,
					StudentAID:    a.StudentID,
					StudentAName:  a.StudentName,
					SubmissionBID: b.SubmissionID,
					StudentBID:    b.StudentID,
					StudentBName:  b.StudentName,
					Score:         score,
				}

				// Canonical ordering: the lower submission id is
				// always side A.
				if strings.Compare(result.SubmissionAID, result.SubmissionBID) > 0 {
					result.SubmissionAID, result.SubmissionBID = result.SubmissionBID, result.SubmissionAID
					result.StudentAID, result.StudentBID = result.StudentBID, result.StudentAID
					result.StudentAName, result.StudentBName = result.StudentBName, result.StudentAName
				}

				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}()
	}

	for _, p := range pairs {
		tasks <- p
	}
	close(tasks)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].SubmissionAID != results[j].SubmissionAID {
			return results[i].SubmissionAID < results[j].SubmissionAID
		}
		return results[i].SubmissionBID < results[j].SubmissionBID
	})

	c.logger.Debug().
		Int("submissions", len(corpus)).
		Int("pairs_compared", len(pairs)).
		Int("matches", len(results)).
		Msg("Corpus comparison finished")

	return results
}
