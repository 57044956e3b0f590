package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/models"
)

type MatchRepository interface {
	ReplaceForAssignment(ctx context.Context, assignmentID string, totalSubmissions int, matches []models.SimilarityMatch) error
	GetByAssignment(ctx context.Context, assignmentID string) ([]models.SimilarityMatch, error)
	GetBySubmission(ctx context.Context, submissionID string) ([]models.SimilarityMatch, error)
	GetRun(ctx context.Context, assignmentID string) (*models.ComparisonRun, error)
	Ping(ctx context.Context) error
}

type matchRepository struct {
	*PostgresRepository
}

func NewMatchRepository(db *sql.DB, logger zerolog.Logger) MatchRepository {
	return &matchRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

// ReplaceForAssignment swaps the stored match set for one assignment in a
// single transaction. The advisory lock serializes concurrent recomputes of
// the same assignment so their delete+insert never interleave; readers see
// either the old snapshot or the new one, never a mix.
func (r *matchRepository) ReplaceForAssignment(ctx context.Context, assignmentID string, totalSubmissions int, matches []models.SimilarityMatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, assignmentID,
	); err != nil {
		return fmt.Errorf("failed to acquire assignment lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM plagiarism_matches WHERE assignment_id = $1`, assignmentID,
	); err != nil {
		return fmt.Errorf("failed to delete previous matches: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO comparison_runs (assignment_id, total_submissions, completed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (assignment_id) DO UPDATE
		SET total_submissions = EXCLUDED.total_submissions,
		    completed_at = EXCLUDED.completed_at
	`, assignmentID, totalSubmissions); err != nil {
		return fmt.Errorf("failed to record comparison run: %w", err)
	}

	insertQuery := `
		INSERT INTO plagiarism_matches (
			id, assignment_id, submission_a_id, submission_b_id,
			student_a_id, student_a_name, student_b_id, student_b_name,
			similarity_score, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx,
			m.ID,
			m.AssignmentID,
			m.SubmissionAID,
			m.SubmissionBID,
			m.StudentAID,
			m.StudentAName,
			m.StudentBID,
			m.StudentBName,
			m.SimilarityScore,
			m.CheckedAt,
		); err != nil {
			return fmt.Errorf("failed to insert match %s/%s: %w", m.SubmissionAID, m.SubmissionBID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match replacement: %w", err)
	}

	r.logger.Debug().
		Str("assignment_id", assignmentID).
		Int("match_count", len(matches)).
		Msg("Replaced match set")

	return nil
}

func (r *matchRepository) GetByAssignment(ctx context.Context, assignmentID string) ([]models.SimilarityMatch, error) {
	query := `
		SELECT
			id, assignment_id, submission_a_id, submission_b_id,
			student_a_id, student_a_name, student_b_id, student_b_name,
			similarity_score, checked_at
		FROM plagiarism_matches
		WHERE assignment_id = $1
		ORDER BY similarity_score DESC, checked_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows)
}

func (r *matchRepository) GetBySubmission(ctx context.Context, submissionID string) ([]models.SimilarityMatch, error) {
	query := `
		SELECT
			id, assignment_id, submission_a_id, submission_b_id,
			student_a_id, student_a_name, student_b_id, student_b_name,
			similarity_score, checked_at
		FROM plagiarism_matches
		WHERE submission_a_id = $1 OR submission_b_id = $1
		ORDER BY similarity_score DESC, checked_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows)
}

func (r *matchRepository) GetRun(ctx context.Context, assignmentID string) (*models.ComparisonRun, error) {
	query := `
		SELECT assignment_id, total_submissions, completed_at
		FROM comparison_runs
		WHERE assignment_id = $1
	`

	run := &models.ComparisonRun{}
	err := r.db.QueryRowContext(ctx, query, assignmentID).Scan(
		&run.AssignmentID,
		&run.TotalSubmissions,
		&run.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (r *matchRepository) Ping(ctx context.Context) error {
	return r.PostgresRepository.Ping(ctx)
}

func scanMatches(rows *sql.Rows) ([]models.SimilarityMatch, error) {
	var matches []models.SimilarityMatch
	for rows.Next() {
		var m models.SimilarityMatch
		err := rows.Scan(
			&m.ID,
			&m.AssignmentID,
			&m.SubmissionAID,
			&m.SubmissionBID,
			&m.StudentAID,
			&m.StudentAName,
			&m.StudentBID,
			&m.StudentBName,
			&m.SimilarityScore,
			&m.CheckedAt,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}
