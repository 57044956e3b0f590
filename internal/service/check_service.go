package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/config"
	"github.com/openlms/plagiarism-service/internal/models"
	"github.com/openlms/plagiarism-service/internal/repository"
	"github.com/openlms/plagiarism-service/internal/service/analyzer"
	"github.com/openlms/plagiarism-service/internal/service/extractor"
	"github.com/openlms/plagiarism-service/internal/service/integration"
	"github.com/openlms/plagiarism-service/internal/service/storage"
	"github.com/openlms/plagiarism-service/pkg/utils"
)

var (
	ErrInvalidAssignmentID          = errors.New("invalid assignment id")
	ErrSubmissionServiceUnavailable = errors.New("submission service unavailable")
)

// EventPublisher sends a JSON payload to the exchange under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// CheckService owns the comparison pipeline: schedule a recompute over the
// queue, or run one to completion against the stored match set.
type CheckService interface {
	ScheduleCheck(ctx context.Context, assignmentID, requestedBy string) error
	RunCheck(ctx context.Context, assignmentID string) error
}

type checkService struct {
	matchRepo  repository.MatchRepository
	submission integration.SubmissionClient
	storage    storage.ObjectStorage
	extractor  *extractor.Extractor
	comparator *analyzer.CorpusComparator
	publisher  EventPublisher
	cfg        config.Config
	logger     zerolog.Logger
}

func NewCheckService(
	matchRepo repository.MatchRepository,
	submission integration.SubmissionClient,
	objectStorage storage.ObjectStorage,
	ext *extractor.Extractor,
	comparator *analyzer.CorpusComparator,
	publisher EventPublisher,
	cfg config.Config,
	logger zerolog.Logger,
) CheckService {
	return &checkService{
		matchRepo:  matchRepo,
		submission: submission,
		storage:    objectStorage,
		extractor:  ext,
		comparator: comparator,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger,
	}
}

// ScheduleCheck publishes a check request and returns without waiting for the
// run. The worker consuming the queue does the actual comparison.
func (s *checkService) ScheduleCheck(ctx context.Context, assignmentID, requestedBy string) error {
	if !utils.ValidateUUID(assignmentID) {
		return ErrInvalidAssignmentID
	}

	event := models.CheckRequestedEvent{
		AssignmentID: assignmentID,
		RequestedBy:  requestedBy,
		Timestamp:    time.Now().Unix(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal check request: %w", err)
	}

	if err := s.publisher.Publish(ctx, s.cfg.RabbitMQ.CheckRoutingKey, body); err != nil {
		return fmt.Errorf("failed to publish check request: %w", err)
	}

	s.logger.Info().
		Str("assignment_id", assignmentID).
		Str("requested_by", requestedBy).
		Msg("Scheduled plagiarism check")

	return nil
}

// RunCheck recomputes the full match set for one assignment and replaces the
// stored one. If the submission listing fails the previous match set is left
// untouched; a partial corpus would silently understate similarity.
func (s *checkService) RunCheck(ctx context.Context, assignmentID string) error {
	start := time.Now()

	submissions, err := s.submission.ListSubmissions(ctx, assignmentID)
	if err != nil {
		s.publishFailed(assignmentID, err)
		if errors.Is(err, integration.ErrAssignmentNotFound) {
			return fmt.Errorf("cannot run check: %w", err)
		}
		return fmt.Errorf("%w: %v", ErrSubmissionServiceUnavailable, err)
	}

	corpus := s.buildCorpus(ctx, assignmentID, submissions)
	scores := s.comparator.Compare(corpus)

	checkedAt := time.Now().UTC()
	matches := make([]models.SimilarityMatch, 0, len(scores))
	for _, p := range scores {
		matches = append(matches, models.SimilarityMatch{
			ID:              utils.GenerateUUID(),
			AssignmentID:    assignmentID,
			SubmissionAID:   p.SubmissionAID,
			SubmissionBID:   p.SubmissionBID,
			StudentAID:      p.StudentAID,
			StudentAName:    p.StudentAName,
			StudentBID:      p.StudentBID,
			StudentBName:    p.StudentBName,
			SimilarityScore: p.Score,
			CheckedAt:       checkedAt,
		})
	}

	if err := s.matchRepo.ReplaceForAssignment(ctx, assignmentID, len(submissions), matches); err != nil {
		s.publishFailed(assignmentID, err)
		return fmt.Errorf("failed to store match set: %w", err)
	}

	elapsed := time.Since(start)
	s.logger.Info().
		Str("assignment_id", assignmentID).
		Int("total_submissions", len(submissions)).
		Int("match_count", len(matches)).
		Dur("elapsed", elapsed).
		Msg("Plagiarism check completed")

	s.publishCompleted(models.CheckCompletedEvent{
		AssignmentID:     assignmentID,
		TotalSubmissions: len(submissions),
		MatchCount:       len(matches),
		ProcessingTimeMs: int(elapsed.Milliseconds()),
		CompletedAt:      checkedAt,
	})

	return nil
}

// buildCorpus fetches and vectorizes every file once. A file that cannot be
// fetched or parsed contributes empty text; one broken upload must not sink
// the whole run.
func (s *checkService) buildCorpus(ctx context.Context, assignmentID string, submissions []models.SubmissionDocument) []analyzer.SubmissionDocs {
	corpus := make([]analyzer.SubmissionDocs, 0, len(submissions))

	for _, sub := range submissions {
		docs := make([]analyzer.Document, 0, len(sub.Files))
		for _, file := range sub.Files {
			text := s.fetchAndExtract(ctx, file)
			docs = append(docs, analyzer.NewDocument(text))
		}

		corpus = append(corpus, analyzer.SubmissionDocs{
			SubmissionID: sub.ID,
			StudentID:    sub.StudentID,
			StudentName:  sub.StudentName,
			Documents:    docs,
		})
	}

	s.logger.Debug().
		Str("assignment_id", assignmentID).
		Int("submissions", len(corpus)).
		Msg("Built comparison corpus")

	return corpus
}

func (s *checkService) fetchAndExtract(ctx context.Context, file models.FileRef) string {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.Analysis.FetchTimeout)
	defer cancel()

	data, err := s.storage.Fetch(fetchCtx, file.Path)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("file_id", file.ID).
			Str("file_path", file.Path).
			Msg("Failed to fetch submission file, treating as empty")
		return ""
	}

	return s.extractor.Extract(file.Path, data)
}

func (s *checkService) publishCompleted(event models.CheckCompletedEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, "plagiarism.check.completed", body); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish check completed event")
	}
}

func (s *checkService) publishFailed(assignmentID string, cause error) {
	body, err := json.Marshal(models.CheckFailedEvent{
		AssignmentID: assignmentID,
		Error:        cause.Error(),
		FailedAt:     time.Now().UTC(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, "plagiarism.check.failed", body); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish check failed event")
	}
}
