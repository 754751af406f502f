package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/api/handlers"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/api/middleware"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/gcsarchive"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/ingest"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/jobs"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/jobs/inmemory"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/logger"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/narrative"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store"
	storebq "github.com/Aukerul-Shuvo/financial-analyzer/internal/store/bigquery"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store/memory"
)

func main() {
	// Parse command-line flags
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		storeMode = flag.String("store", "bigquery", "Storage backend: bigquery or memory")
		project   = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project ID (or set GOOGLE_CLOUD_PROJECT env)")
		dataset   = flag.String("dataset", os.Getenv("BQ_DATASET"), "BigQuery dataset name (or set BQ_DATASET env)")
		bucket    = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for raw CSV archival (or set GCS_BUCKET env)")
		model     = flag.String("model", narrative.DefaultModelName, "Gemini model for narrative generation")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - batch archival will be disabled")
	}

	// Initialize storage
	ctx := context.Background()

	var db store.Store
	switch *storeMode {
	case "memory":
		db = memory.New()
		log.Warn().Msg("Using in-memory storage - data will not survive restarts")
	case "bigquery":
		repo, err := storebq.NewRepository(ctx, *project, *dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		db = repo
	default:
		log.Fatal().Str("store", *storeMode).Msg("Unknown storage backend")
	}

	// Initialize the narrative generator
	streamer, err := narrative.NewGeminiStreamer(ctx, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	generator := narrative.NewGenerator(streamer, db, log)

	// Initialize job infrastructure for batch archival
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ArchiveBatchJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Str("batch_id", job.BatchID).
			Str("object_name", job.ObjectName).
			Msg("Archiving batch CSV")

		if err := gcsarchive.Upload(ctx, *bucket, job.ObjectName, job.CSV); err != nil {
			log.Error().
				Err(err).
				Str("job_id", job.JobID).
				Str("batch_id", job.BatchID).
				Msg("Batch archival failed")
			return err
		}

		log.Info().
			Str("job_id", job.JobID).
			Str("batch_id", job.BatchID).
			Msg("Batch archival completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting archival worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Archival worker stopped with error")
		}
	}()

	// Initialize handlers
	orchestrator := ingest.NewOrchestrator(db, db, log)

	var archive jobs.Publisher
	if *bucket != "" {
		archive = jobQueue
	}
	transactionsHandler := handlers.NewTransactionsHandler(orchestrator, db, archive, log)
	narrativeHandler := handlers.NewNarrativeHandler(generator, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/upload_single_transaction/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.UploadSingleTransaction(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/upload_transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.UploadTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/compare_last_three_analyses/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.CompareLastThreeAnalyses(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/generate-narrative/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			narrativeHandler.GenerateNarrative(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/", handlers.Health)

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server. WriteTimeout stays unset because narrative
	// streams can run well past any fixed deadline.
	server := &http.Server{
		Addr:        ":" + *port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
