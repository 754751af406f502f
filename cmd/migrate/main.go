// Command migrate creates the BigQuery dataset and tables the analyzer
// writes to. Statements are idempotent, so re-running is safe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", "finance_analyzer", "BigQuery dataset ID")
	location  = flag.String("location", "US", "BigQuery dataset location")
)

// tableDDL maps table names to their CREATE TABLE statements. The
// column names must stay in sync with the row structs in
// internal/store/bigquery.
var tableDDL = map[string]string{
	"transactions": `
		CREATE TABLE IF NOT EXISTS ` + "`%s.%s.transactions`" + ` (
			transaction_id STRING NOT NULL,
			batch_id       STRING,
			date           DATE NOT NULL,
			amount         FLOAT64 NOT NULL,
			merchant       STRING,
			category       STRING,
			city           STRING,
			region         STRING,
			payment_method STRING,
			day_of_week    INT64,
			week_of_month  INT64,
			month          INT64,
			year           INT64,
			created_ts     TIMESTAMP NOT NULL
		)
	`,
	"analysis_snapshots": `
		CREATE TABLE IF NOT EXISTS ` + "`%s.%s.analysis_snapshots`" + ` (
			snapshot_id                 INT64 NOT NULL,
			transaction_id              STRING NOT NULL,
			historical_average_spending FLOAT64,
			current_week_spending       FLOAT64,
			spending_comparison         FLOAT64,
			historical_average_earnings FLOAT64,
			current_week_earnings       FLOAT64,
			earnings_comparison         FLOAT64,
			current_month_spending      FLOAT64,
			current_month_earnings      FLOAT64,
			historical_month_spending   FLOAT64,
			historical_month_earnings   FLOAT64,
			overall_spending            FLOAT64,
			overall_earnings            FLOAT64,
			created_ts                  TIMESTAMP NOT NULL
		)
	`,
	"narratives": `
		CREATE TABLE IF NOT EXISTS ` + "`%s.%s.narratives`" + ` (
			transaction_id STRING NOT NULL,
			strategy       STRING NOT NULL,
			narrative      STRING,
			created_ts     TIMESTAMP NOT NULL
		)
	`,
}

// tableOrder keeps the log output deterministic.
var tableOrder = []string{"transactions", "analysis_snapshots", "narratives"}

func main() {
	flag.Parse()

	ctx := context.Background()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
	}

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	if err := ensureDataset(ctx, client); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	for _, name := range tableOrder {
		log.Printf("  [RUN]  %s", name)
		sql := fmt.Sprintf(strings.TrimSpace(tableDDL[name]), *projectID, *datasetID)
		if err := runDDL(ctx, client, sql); err != nil {
			log.Fatalf("Failed to create table %s: %v", name, err)
		}
		log.Printf("  [OK]   %s", name)
	}

	log.Println("Schema is up to date.")
}

// ensureDataset creates the dataset if it does not already exist.
func ensureDataset(ctx context.Context, client *bigquery.Client) error {
	meta := &bigquery.DatasetMetadata{Location: *location}
	err := client.Dataset(*datasetID).Create(ctx, meta)
	if err == nil {
		log.Printf("Created dataset %s", *datasetID)
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		return nil
	}
	return fmt.Errorf("creating dataset: %w", err)
}

// runDDL executes a single DDL statement and waits for completion.
func runDDL(ctx context.Context, client *bigquery.Client, sql string) error {
	query := client.Query(sql)
	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
