package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/openlms/plagiarism-service/internal/config"
	"github.com/openlms/plagiarism-service/internal/delivery/httpd"
	"github.com/openlms/plagiarism-service/internal/repository"
	"github.com/openlms/plagiarism-service/internal/service"
	"github.com/openlms/plagiarism-service/internal/service/analyzer"
	"github.com/openlms/plagiarism-service/internal/service/extractor"
	"github.com/openlms/plagiarism-service/internal/service/integration"
	"github.com/openlms/plagiarism-service/internal/service/storage"
	"github.com/openlms/plagiarism-service/internal/worker"
	"github.com/openlms/plagiarism-service/internal/worker/queue"
)

type App struct {
	server       *http.Server
	logger       zerolog.Logger
	config       *config.Config
	db           *sql.DB
	checkWorker  worker.CheckWorker
	rabbitMQRepo repository.RabbitMQRepository
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	rabbitMQRepo, err := repository.NewRabbitMQRepository(cfg.RabbitMQ.URL, log)
	if err != nil {
		return nil, err
	}

	if err := rabbitMQRepo.SetupQueue(
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.QueueName,
		[]string{cfg.RabbitMQ.CheckRoutingKey, cfg.RabbitMQ.SubmissionBinding},
	); err != nil {
		return nil, err
	}

	rabbitMQPublisher := queue.NewRabbitMQPublisher(rabbitMQRepo.Channel(), cfg.RabbitMQ.Exchange, log)
	rabbitMQConsumer := queue.NewRabbitMQConsumer(
		rabbitMQRepo.Channel(),
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		cfg.RabbitMQ.PrefetchCount,
		log,
	)

	matchRepo := repository.NewMatchRepository(db, log)

	submissionClient := integration.NewSubmissionClient(
		cfg.Services.Submission.URL,
		cfg.Services.Submission.Timeout,
		cfg.Services.Submission.RetryCount,
		cfg.Services.Submission.RetryDelay,
		log,
	)

	objectStorage, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	textExtractor := extractor.New(log)

	scorer, err := analyzer.NewScorer(cfg.Analysis.SimilarityMethod, cfg.Analysis.MinContentLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scorer: %w", err)
	}

	comparator := analyzer.NewCorpusComparator(scorer, cfg.Analysis.MaxWorkers, log)

	checkService := service.NewCheckService(
		matchRepo,
		submissionClient,
		objectStorage,
		textExtractor,
		comparator,
		rabbitMQPublisher,
		*cfg,
		log,
	)

	reportService := service.NewReportService(matchRepo, cfg.Analysis, log)

	workerPool := worker.NewWorkerPool(cfg.Analysis.MaxWorkers, log)

	checkWorker := worker.NewCheckWorker(
		workerPool,
		rabbitMQConsumer,
		checkService,
		cfg.RabbitMQ,
		log,
	)

	handler := httpd.NewHandler(
		checkService,
		reportService,
		matchRepo,
		rabbitMQRepo,
		checkWorker,
		cfg.Analysis.DefaultThreshold,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:       server,
		logger:       log,
		config:       cfg,
		db:           db,
		checkWorker:  checkWorker,
		rabbitMQRepo: rabbitMQRepo,
	}, nil
}

func (a *App) Run() error {
	ctx := context.Background()
	if err := a.checkWorker.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start check worker")
		return err
	}

	a.logger.Info().Msgf("Starting plagiarism service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down plagiarism service...")

	if err := a.checkWorker.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop check worker")
	}

	if a.rabbitMQRepo != nil {
		if err := a.rabbitMQRepo.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Plagiarism service stopped")
	return nil
}
