package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlms/plagiarism-service/internal/config"
	"github.com/openlms/plagiarism-service/internal/models"
	"github.com/openlms/plagiarism-service/internal/service/analyzer"
	"github.com/openlms/plagiarism-service/internal/service/extractor"
	"github.com/openlms/plagiarism-service/internal/service/integration"
)

const (
	assignmentID = "11111111-1111-1111-1111-111111111111"
	submissionA  = "aaaaaaaa-0000-0000-0000-000000000001"
	submissionB  = "aaaaaaaa-0000-0000-0000-000000000002"
	submissionC  = "aaaaaaaa-0000-0000-0000-000000000003"

	copiedEssay   = "the binary search algorithm halves the candidate range on every probe until the target value is located or ruled out"
	originalEssay = "photosynthesis converts captured sunlight into chemical energy while releasing oxygen as plants split water molecules"
)

type fakeMatchRepo struct {
	mu               sync.Mutex
	replaceCalls     int
	storedMatches    []models.SimilarityMatch
	storedRun        *models.ComparisonRun
	replaceErr       error
	matchesByAssign  map[string][]models.SimilarityMatch
	matchesBySubmiss map[string][]models.SimilarityMatch
}

func (f *fakeMatchRepo) ReplaceForAssignment(ctx context.Context, assignmentID string, totalSubmissions int, matches []models.SimilarityMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return f.replaceErr
	}

	f.replaceCalls++
	f.storedMatches = matches
	f.storedRun = &models.ComparisonRun{
		AssignmentID:     assignmentID,
		TotalSubmissions: totalSubmissions,
		CompletedAt:      time.Now().UTC(),
	}
	return nil
}

func (f *fakeMatchRepo) GetByAssignment(ctx context.Context, assignmentID string) ([]models.SimilarityMatch, error) {
	return f.matchesByAssign[assignmentID], nil
}

func (f *fakeMatchRepo) GetBySubmission(ctx context.Context, submissionID string) ([]models.SimilarityMatch, error) {
	return f.matchesBySubmiss[submissionID], nil
}

func (f *fakeMatchRepo) GetRun(ctx context.Context, assignmentID string) (*models.ComparisonRun, error) {
	return f.storedRun, nil
}

func (f *fakeMatchRepo) Ping(ctx context.Context) error { return nil }

type fakeSubmissionClient struct {
	submissions []models.SubmissionDocument
	err         error
}

func (f *fakeSubmissionClient) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.submissions, nil
}

type fakeStorage struct {
	files map[string][]byte
}

func (f *fakeStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", key)
	}
	return data, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	RoutingKey string
	Body       []byte
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{RoutingKey: routingKey, Body: body})
	return nil
}

func (f *fakePublisher) byKey(routingKey string) []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []publishedMessage
	for _, msg := range f.published {
		if msg.RoutingKey == routingKey {
			out = append(out, msg)
		}
	}
	return out
}

func testConfig() config.Config {
	return config.Config{
		RabbitMQ: config.RabbitMQConfig{
			Exchange:        "plagiarism_exchange",
			CheckRoutingKey: "plagiarism.check.requested",
		},
		Analysis: config.AnalysisConfig{
			SimilarityMethod: "cosine",
			MinContentLength: 50,
			DefaultThreshold: 70,
			HighThreshold:    70,
			MediumThreshold:  50,
			MaxWorkers:       2,
			FetchTimeout:     time.Second,
		},
	}
}

func newCheckService(t *testing.T, repo *fakeMatchRepo, client *fakeSubmissionClient, store *fakeStorage, pub *fakePublisher) CheckService {
	t.Helper()

	cfg := testConfig()
	log := zerolog.Nop()

	scorer, err := analyzer.NewScorer(cfg.Analysis.SimilarityMethod, cfg.Analysis.MinContentLength)
	require.NoError(t, err)

	return NewCheckService(
		repo,
		client,
		store,
		extractor.New(log),
		analyzer.NewCorpusComparator(scorer, cfg.Analysis.MaxWorkers, log),
		pub,
		cfg,
		log,
	)
}

func submissionDoc(id, studentID, studentName string, paths ...string) models.SubmissionDocument {
	files := make([]models.FileRef, 0, len(paths))
	for i, path := range paths {
		files = append(files, models.FileRef{
			ID:   fmt.Sprintf("file-%s-%d", id, i),
			Path: path,
		})
	}
	return models.SubmissionDocument{
		ID:          id,
		StudentID:   studentID,
		StudentName: studentName,
		Files:       files,
	}
}

func TestScheduleCheck(t *testing.T) {
	pub := &fakePublisher{}
	svc := newCheckService(t, &fakeMatchRepo{}, &fakeSubmissionClient{}, &fakeStorage{}, pub)

	require.NoError(t, svc.ScheduleCheck(context.Background(), assignmentID, "teacher-7"))

	msgs := pub.byKey("plagiarism.check.requested")
	require.Len(t, msgs, 1)

	var event models.CheckRequestedEvent
	require.NoError(t, json.Unmarshal(msgs[0].Body, &event))
	assert.Equal(t, assignmentID, event.AssignmentID)
	assert.Equal(t, "teacher-7", event.RequestedBy)
	assert.NotZero(t, event.Timestamp)
}

func TestScheduleCheck_InvalidAssignmentID(t *testing.T) {
	pub := &fakePublisher{}
	svc := newCheckService(t, &fakeMatchRepo{}, &fakeSubmissionClient{}, &fakeStorage{}, pub)

	err := svc.ScheduleCheck(context.Background(), "not-a-uuid", "")
	assert.ErrorIs(t, err, ErrInvalidAssignmentID)
	assert.Empty(t, pub.published)
}

func TestScheduleCheck_PublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newCheckService(t, &fakeMatchRepo{}, &fakeSubmissionClient{}, &fakeStorage{}, pub)

	assert.Error(t, svc.ScheduleCheck(context.Background(), assignmentID, ""))
}

func TestRunCheck_StoresMatches(t *testing.T) {
	repo := &fakeMatchRepo{}
	pub := &fakePublisher{}
	client := &fakeSubmissionClient{
		submissions: []models.SubmissionDocument{
			submissionDoc(submissionB, "student-2", "Bob", "b/essay.txt"),
			submissionDoc(submissionA, "student-1", "Alice", "a/essay.txt"),
			submissionDoc(submissionC, "student-3", "Carol", "c/essay.txt"),
		},
	}
	store := &fakeStorage{files: map[string][]byte{
		"a/essay.txt": []byte(copiedEssay),
		"b/essay.txt": []byte(copiedEssay),
		"c/essay.txt": []byte(originalEssay),
	}}

	svc := newCheckService(t, repo, client, store, pub)
	require.NoError(t, svc.RunCheck(context.Background(), assignmentID))

	require.Len(t, repo.storedMatches, 1)
	match := repo.storedMatches[0]

	_, err := uuid.Parse(match.ID)
	assert.NoError(t, err)
	assert.Equal(t, assignmentID, match.AssignmentID)
	assert.Equal(t, submissionA, match.SubmissionAID)
	assert.Equal(t, submissionB, match.SubmissionBID)
	assert.Equal(t, "Alice", match.StudentAName)
	assert.Equal(t, "Bob", match.StudentBName)
	assert.Equal(t, 100.0, match.SimilarityScore)
	assert.False(t, match.CheckedAt.IsZero())

	require.NotNil(t, repo.storedRun)
	assert.Equal(t, 3, repo.storedRun.TotalSubmissions)

	completed := pub.byKey("plagiarism.check.completed")
	require.Len(t, completed, 1)

	var event models.CheckCompletedEvent
	require.NoError(t, json.Unmarshal(completed[0].Body, &event))
	assert.Equal(t, 3, event.TotalSubmissions)
	assert.Equal(t, 1, event.MatchCount)
}

func TestRunCheck_Idempotent(t *testing.T) {
	repo := &fakeMatchRepo{}
	client := &fakeSubmissionClient{
		submissions: []models.SubmissionDocument{
			submissionDoc(submissionA, "student-1", "Alice", "a/essay.txt"),
			submissionDoc(submissionB, "student-2", "Bob", "b/essay.txt"),
		},
	}
	store := &fakeStorage{files: map[string][]byte{
		"a/essay.txt": []byte(copiedEssay),
		"b/essay.txt": []byte(copiedEssay),
	}}

	svc := newCheckService(t, repo, client, store, &fakePublisher{})

	require.NoError(t, svc.RunCheck(context.Background(), assignmentID))
	require.NoError(t, svc.RunCheck(context.Background(), assignmentID))

	assert.Equal(t, 2, repo.replaceCalls)
	require.Len(t, repo.storedMatches, 1)
	assert.Equal(t, 100.0, repo.storedMatches[0].SimilarityScore)
}

func TestRunCheck_SubmissionServiceDown(t *testing.T) {
	repo := &fakeMatchRepo{}
	pub := &fakePublisher{}
	client := &fakeSubmissionClient{err: errors.New("connection refused")}

	svc := newCheckService(t, repo, client, &fakeStorage{}, pub)

	err := svc.RunCheck(context.Background(), assignmentID)
	assert.ErrorIs(t, err, ErrSubmissionServiceUnavailable)

	// The previous match set must survive an aborted run.
	assert.Zero(t, repo.replaceCalls)
	assert.Len(t, pub.byKey("plagiarism.check.failed"), 1)
}

func TestRunCheck_AssignmentNotFound(t *testing.T) {
	repo := &fakeMatchRepo{}
	client := &fakeSubmissionClient{
		err: fmt.Errorf("%w: %s", integration.ErrAssignmentNotFound, assignmentID),
	}

	svc := newCheckService(t, repo, client, &fakeStorage{}, &fakePublisher{})

	err := svc.RunCheck(context.Background(), assignmentID)
	assert.ErrorIs(t, err, integration.ErrAssignmentNotFound)
	assert.Zero(t, repo.replaceCalls)
}

func TestRunCheck_MissingFileTreatedAsEmpty(t *testing.T) {
	repo := &fakeMatchRepo{}
	client := &fakeSubmissionClient{
		submissions: []models.SubmissionDocument{
			submissionDoc(submissionA, "student-1", "Alice", "a/essay.txt"),
			submissionDoc(submissionB, "student-2", "Bob", "gone/essay.txt"),
		},
	}
	store := &fakeStorage{files: map[string][]byte{
		"a/essay.txt": []byte(copiedEssay),
	}}

	svc := newCheckService(t, repo, client, store, &fakePublisher{})
	require.NoError(t, svc.RunCheck(context.Background(), assignmentID))

	// The unreadable file scores zero, so no match is stored, but the run
	// itself completes and records both submissions.
	assert.Equal(t, 1, repo.replaceCalls)
	assert.Empty(t, repo.storedMatches)
	require.NotNil(t, repo.storedRun)
	assert.Equal(t, 2, repo.storedRun.TotalSubmissions)
}

func TestRunCheck_NoSubmissions(t *testing.T) {
	repo := &fakeMatchRepo{}
	svc := newCheckService(t, repo, &fakeSubmissionClient{}, &fakeStorage{}, &fakePublisher{})

	require.NoError(t, svc.RunCheck(context.Background(), assignmentID))

	assert.Equal(t, 1, repo.replaceCalls)
	assert.Empty(t, repo.storedMatches)
	require.NotNil(t, repo.storedRun)
	assert.Zero(t, repo.storedRun.TotalSubmissions)
}

func TestRunCheck_StoreFailure(t *testing.T) {
	repo := &fakeMatchRepo{replaceErr: errors.New("db down")}
	pub := &fakePublisher{}
	svc := newCheckService(t, repo, &fakeSubmissionClient{}, &fakeStorage{}, pub)

	assert.Error(t, svc.RunCheck(context.Background(), assignmentID))
	assert.Len(t, pub.byKey("plagiarism.check.failed"), 1)
}
