package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/config"
	"github.com/openlms/plagiarism-service/internal/models"
	"github.com/openlms/plagiarism-service/internal/service"
	"github.com/openlms/plagiarism-service/internal/service/integration"
	"github.com/openlms/plagiarism-service/internal/worker/queue"
	"github.com/openlms/plagiarism-service/pkg/utils"
)

// CheckWorker consumes check requests and submission events from the queue
// and runs full assignment recomputes through CheckService.
type CheckWorker interface {
	Start(ctx context.Context) error
	Stop() error
	GetStats() WorkerStats
}

type WorkerStats struct {
	ActiveWorkers  int `json:"active_workers"`
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	QueueLength    int `json:"queue_length"`
}

type checkWorker struct {
	workerPool    *WorkerPool
	queueConsumer queue.RabbitMQConsumer
	checkService  service.CheckService
	cfg           config.RabbitMQConfig
	logger        zerolog.Logger
	stats         WorkerStats
	statsMutex    sync.RWMutex
	startTime     time.Time
}

func NewCheckWorker(
	workerPool *WorkerPool,
	queueConsumer queue.RabbitMQConsumer,
	checkService service.CheckService,
	cfg config.RabbitMQConfig,
	logger zerolog.Logger,
) CheckWorker {
	return &checkWorker{
		workerPool:    workerPool,
		queueConsumer: queueConsumer,
		checkService:  checkService,
		cfg:           cfg,
		logger:        logger,
		startTime:     time.Now(),
	}
}

func (w *checkWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting check worker...")

	if err := w.workerPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Check worker started successfully")
	return nil
}

func (w *checkWorker) Stop() error {
	w.logger.Info().Msg("Stopping check worker...")

	if err := w.workerPool.Stop(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	if err := w.queueConsumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()

	w.logger.Info().
		Int("total_processed", w.stats.TotalProcessed).
		Int("failed_jobs", w.stats.FailedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Check worker stopped")

	return nil
}

func (w *checkWorker) processMessages(ctx context.Context, msgs <-chan queue.RabbitMQMessage) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			w.workerPool.Submit(func() {
				if err := w.processMessage(ctx, msg); err != nil {
					w.logger.Error().Err(err).Str("routing_key", msg.RoutingKey).Msg("Failed to process message")

					w.statsMutex.Lock()
					w.stats.FailedJobs++
					w.statsMutex.Unlock()

					// Malformed messages and unknown assignments
					// never get better on redelivery.
					if isPermanentError(err) || errors.Is(err, integration.ErrAssignmentNotFound) {
						if ackErr := msg.Ack(false); ackErr != nil {
							w.logger.Error().Err(ackErr).Msg("Failed to ack message")
						}
						return
					}

					if nackErr := msg.Nack(false, true); nackErr != nil {
						w.logger.Error().Err(nackErr).Msg("Failed to nack message")
					}
					return
				}

				if err := msg.Ack(false); err != nil {
					w.logger.Error().Err(err).Msg("Failed to ack message")
				}

				w.statsMutex.Lock()
				w.stats.TotalProcessed++
				w.statsMutex.Unlock()
			})
		}
	}
}

// processMessage routes a delivery by its routing key. Check requests and
// submission events both reduce to the same operation: recompute the
// assignment they name.
func (w *checkWorker) processMessage(ctx context.Context, msg queue.RabbitMQMessage) error {
	assignmentID, err := w.extractAssignmentID(msg)
	if err != nil {
		return err
	}

	w.logger.Info().
		Str("assignment_id", assignmentID).
		Str("routing_key", msg.RoutingKey).
		Msg("Processing plagiarism check")

	return w.checkService.RunCheck(ctx, assignmentID)
}

func (w *checkWorker) extractAssignmentID(msg queue.RabbitMQMessage) (string, error) {
	var assignmentID string

	switch msg.RoutingKey {
	case w.cfg.CheckRoutingKey:
		var event models.CheckRequestedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return "", permanent(fmt.Errorf("failed to unmarshal check request: %w", err))
		}
		assignmentID = event.AssignmentID
	case w.cfg.SubmissionBinding:
		var event models.SubmissionCreatedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return "", permanent(fmt.Errorf("failed to unmarshal submission event: %w", err))
		}
		assignmentID = event.AssignmentID
	default:
		return "", permanent(fmt.Errorf("unexpected routing key: %s", msg.RoutingKey))
	}

	if strings.TrimSpace(assignmentID) == "" {
		return "", permanent(errors.New("empty assignment_id"))
	}
	if !utils.ValidateUUID(assignmentID) {
		return "", permanent(fmt.Errorf("malformed assignment_id: %q", assignmentID))
	}

	return assignmentID, nil
}

func (w *checkWorker) GetStats() WorkerStats {
	w.statsMutex.RLock()
	stats := w.stats
	w.statsMutex.RUnlock()

	queueLength, err := w.queueConsumer.GetQueueLength()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to get queue length")
	} else {
		stats.QueueLength = queueLength
	}

	stats.ActiveWorkers = w.workerPool.GetActiveWorkers()

	return stats
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
