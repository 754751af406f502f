package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/gcsarchive"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/ingest"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/logger"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/pipeline"
	storebq "github.com/Aukerul-Shuvo/financial-analyzer/internal/store/bigquery"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	var (
		file    = flag.String("file", "", "Path to the transactions CSV, local or gs://bucket/object")
		project = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project ID (or set GOOGLE_CLOUD_PROJECT env)")
		dataset = flag.String("dataset", os.Getenv("BQ_DATASET"), "BigQuery dataset name (or set BQ_DATASET env)")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	// Read the CSV from GCS or the local filesystem
	var raw []byte
	var err error
	if strings.HasPrefix(*file, "gs://") {
		raw, err = gcsarchive.Fetch(ctx, *file)
	} else {
		raw, err = os.ReadFile(*file)
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read CSV")
	}

	records, err := pipeline.ParseCSV(bytes.NewReader(raw))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse CSV")
	}

	repo, err := storebq.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	orch := ingest.NewOrchestrator(repo, repo, log)

	log.Info().Str("file", *file).Int("records", len(records)).Msg("Starting ingestion")

	result, err := orch.IngestBatch(ctx, records)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	if !result.Analyzed {
		fmt.Println(ingest.NotEnoughDataMessage)
		return
	}
	fmt.Printf("Ingestion completed successfully: batch %s, %d rows analyzed.\n", result.BatchID, len(result.Analyses))
}
