package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/config"
	"github.com/openlms/plagiarism-service/internal/models"
	"github.com/openlms/plagiarism-service/internal/repository"
	"github.com/openlms/plagiarism-service/pkg/utils"
)

var ErrInvalidSubmissionID = errors.New("invalid submission id")

// ReportService reads stored match sets. It never triggers a comparison.
type ReportService interface {
	GetAssignmentReport(ctx context.Context, assignmentID string, threshold float64) (*models.PlagiarismReport, error)
	GetSubmissionMatches(ctx context.Context, submissionID string) (*models.SubmissionMatches, error)
}

type reportService struct {
	matchRepo repository.MatchRepository
	cfg       config.AnalysisConfig
	logger    zerolog.Logger
}

func NewReportService(matchRepo repository.MatchRepository, cfg config.AnalysisConfig, logger zerolog.Logger) ReportService {
	return &reportService{
		matchRepo: matchRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// GetAssignmentReport builds the per-assignment report. The threshold filters
// only the listed matches; total_comparisons and the severity counters always
// reflect the full stored set, so tightening the threshold never hides how
// many flagged pairs exist.
func (s *reportService) GetAssignmentReport(ctx context.Context, assignmentID string, threshold float64) (*models.PlagiarismReport, error) {
	if !utils.ValidateUUID(assignmentID) {
		return nil, ErrInvalidAssignmentID
	}

	run, err := s.matchRepo.GetRun(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparison run: %w", err)
	}

	report := &models.PlagiarismReport{
		AssignmentID: assignmentID,
		Threshold:    threshold,
		Matches:      []models.MatchEntry{},
	}

	// No run yet means no check has completed for this assignment; an
	// empty report is the answer, not an error.
	if run == nil {
		return report, nil
	}

	matches, err := s.matchRepo.GetByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	report.TotalSubmissions = run.TotalSubmissions
	report.TotalComparisons = len(matches)
	completedAt := run.CompletedAt
	report.LastCheckedAt = &completedAt

	for _, m := range matches {
		if m.SimilarityScore > s.cfg.HighThreshold {
			report.HighSimilarityCount++
		} else if m.SimilarityScore >= s.cfg.MediumThreshold {
			report.MediumSimilarityCount++
		}

		if m.SimilarityScore < threshold {
			continue
		}

		report.Matches = append(report.Matches, models.MatchEntry{
			ID:              m.ID,
			AssignmentID:    m.AssignmentID,
			SubmissionAID:   m.SubmissionAID,
			SubmissionBID:   m.SubmissionBID,
			SimilarityScore: m.SimilarityScore,
			CheckedAt:       m.CheckedAt,
			StudentA:        models.StudentInfo{ID: m.StudentAID, FullName: m.StudentAName},
			StudentB:        models.StudentInfo{ID: m.StudentBID, FullName: m.StudentBName},
		})
	}

	return report, nil
}

// GetSubmissionMatches lists every stored match involving one submission,
// annotated with the other side's student.
func (s *reportService) GetSubmissionMatches(ctx context.Context, submissionID string) (*models.SubmissionMatches, error) {
	if !utils.ValidateUUID(submissionID) {
		return nil, ErrInvalidSubmissionID
	}

	matches, err := s.matchRepo.GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	result := &models.SubmissionMatches{
		SubmissionID: submissionID,
		Matches:      []models.SubmissionMatchEntry{},
	}

	for _, m := range matches {
		entry := models.SubmissionMatchEntry{
			MatchID:         m.ID,
			SimilarityScore: m.SimilarityScore,
			CheckedAt:       m.CheckedAt,
		}

		if m.SubmissionAID == submissionID {
			entry.OtherSubmissionID = m.SubmissionBID
			entry.OtherStudent = models.StudentInfo{ID: m.StudentBID, FullName: m.StudentBName}
		} else {
			entry.OtherSubmissionID = m.SubmissionAID
			entry.OtherStudent = models.StudentInfo{ID: m.StudentAID, FullName: m.StudentAName}
		}

		result.Matches = append(result.Matches, entry)
	}

	return result, nil
}
