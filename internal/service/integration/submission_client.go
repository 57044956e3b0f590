package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/models"
)

// ErrAssignmentNotFound means the submission service does not know the
// assignment. Retrying will not help.
var ErrAssignmentNotFound = errors.New("assignment not found")

// SubmissionClient reads submission metadata from the submission service.
// This service never writes through it.
type SubmissionClient interface {
	ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDocument, error)
}

type submissionClient struct {
	baseURL    string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewSubmissionClient(baseURL string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) SubmissionClient {
	return &submissionClient{
		baseURL:    baseURL,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *submissionClient) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDocument, error) {
	url := fmt.Sprintf("%s/api/v1/assignments/%s/submissions", c.baseURL, assignmentID)

	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying submission list fetch")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to list submissions: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var listing models.ListSubmissionsResponse
			if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode response: %w", err)
				continue
			}
			resp.Body.Close()

			c.logger.Debug().
				Str("assignment_id", assignmentID).
				Int("submission_count", len(listing.Submissions)).
				Msg("Listed submissions")

			return listing.Submissions, nil
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", ErrAssignmentNotFound, assignmentID)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("submission service returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("failed to list submissions after %d attempts: %w", c.retryCount+1, lastErr)
}
