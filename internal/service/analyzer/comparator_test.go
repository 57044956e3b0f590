package analyzer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sharedEssay = "binary search trees keep their keys in sorted order so lookup insertion and deletion run in logarithmic time on average"
	otherEssay  = "volcanic eruptions reshaped coastal regions across centuries, burying villages beneath ash while fertile soils later attracted new settlements"
)

func newComparator(t *testing.T, workers int) *CorpusComparator {
	t.Helper()
	scorer, err := NewScorer("cosine", DefaultMinContentLength)
	require.NoError(t, err)
	return NewCorpusComparator(scorer, workers, zerolog.Nop())
}

func submission(id, studentID, studentName string, texts ...string) SubmissionDocs {
	docs := make([]Document, 0, len(texts))
	for _, text := range texts {
		docs = append(docs, NewDocument(text))
	}
	return SubmissionDocs{
		SubmissionID: id,
		StudentID:    studentID,
		StudentName:  studentName,
		Documents:    docs,
	}
}

func TestMaxFilePairScore(t *testing.T) {
	scorer, err := NewScorer("cosine", DefaultMinContentLength)
	require.NoError(t, err)

	a := []Document{NewDocument(otherEssay), NewDocument(sharedEssay)}
	b := []Document{NewDocument(sharedEssay)}

	// The identical file pair dominates the unrelated one.
	assert.Equal(t, 100.0, MaxFilePairScore(a, b, scorer))
	assert.Equal(t, 0.0, MaxFilePairScore(nil, b, scorer))
}

func TestCompare_FlagsCopiedSubmission(t *testing.T) {
	comparator := newComparator(t, 4)

	corpus := []SubmissionDocs{
		submission("sub-a", "student-1", "Alice", sharedEssay),
		submission("sub-b", "student-2", "Bob", sharedEssay),
		submission("sub-c", "student-3", "Carol", otherEssay),
	}

	results := comparator.Compare(corpus)

	require.Len(t, results, 1)
	assert.Equal(t, "sub-a", results[0].SubmissionAID)
	assert.Equal(t, "sub-b", results[0].SubmissionBID)
	assert.Equal(t, "Alice", results[0].StudentAName)
	assert.Equal(t, "Bob", results[0].StudentBName)
	assert.Equal(t, 100.0, results[0].Score)
}

func TestCompare_SkipsSameStudent(t *testing.T) {
	comparator := newComparator(t, 2)

	corpus := []SubmissionDocs{
		submission("sub-a", "student-1", "Alice", sharedEssay),
		submission("sub-b", "student-1", "Alice", sharedEssay),
	}

	assert.Empty(t, comparator.Compare(corpus))
}

func TestCompare_SkipsSubmissionsWithoutFiles(t *testing.T) {
	comparator := newComparator(t, 2)

	corpus := []SubmissionDocs{
		submission("sub-a", "student-1", "Alice", sharedEssay),
		submission("sub-b", "student-2", "Bob"),
	}

	assert.Empty(t, comparator.Compare(corpus))
}

func TestCompare_DiscardsZeroScores(t *testing.T) {
	comparator := newComparator(t, 2)

	corpus := []SubmissionDocs{
		submission("sub-a", "student-1", "Alice", sharedEssay),
		submission("sub-b", "student-2", "Bob", otherEssay),
	}

	assert.Empty(t, comparator.Compare(corpus))
}

func TestCompare_CanonicalOrdering(t *testing.T) {
	comparator := newComparator(t, 2)

	// Listed with the higher submission id first; the result must still
	// have the lower id on side A, students swapped to match.
	corpus := []SubmissionDocs{
		submission("sub-z", "student-1", "Zoe", sharedEssay),
		submission("sub-a", "student-2", "Adam", sharedEssay),
	}

	results := comparator.Compare(corpus)

	require.Len(t, results, 1)
	assert.Equal(t, "sub-a", results[0].SubmissionAID)
	assert.Equal(t, "Adam", results[0].StudentAName)
	assert.Equal(t, "sub-z", results[0].SubmissionBID)
	assert.Equal(t, "Zoe", results[0].StudentBName)
}

func TestCompare_Deterministic(t *testing.T) {
	comparator := newComparator(t, 8)

	corpus := []SubmissionDocs{
		submission("sub-1", "student-1", "Alice", sharedEssay),
		submission("sub-2", "student-2", "Bob", sharedEssay),
		submission("sub-3", "student-3", "Carol", sharedEssay+" with an extra closing remark about balancing"),
		submission("sub-4", "student-4", "Dave", sharedEssay),
	}

	first := comparator.Compare(corpus)
	require.NotEmpty(t, first)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, comparator.Compare(corpus))
	}

	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		less := prev.SubmissionAID < cur.SubmissionAID ||
			(prev.SubmissionAID == cur.SubmissionAID && prev.SubmissionBID < cur.SubmissionBID)
		assert.True(t, less, "results must be sorted by pair ids")
	}
}

func TestCompare_EmptyCorpus(t *testing.T) {
	comparator := newComparator(t, 2)

	assert.Empty(t, comparator.Compare(nil))
	assert.Empty(t, comparator.Compare([]SubmissionDocs{
		submission("sub-a", "student-1", "Alice", sharedEssay),
	}))
}
