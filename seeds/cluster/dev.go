package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perola/clusterd/internal/model"
	"github.com/perola/clusterd/internal/status"
)

const (
	devReadyID       = "00000000-0000-4000-8000-0000000000a1"
	devProgressingID = "00000000-0000-4000-8000-0000000000a2"
	devFailedID      = "00000000-0000-4000-8000-0000000000a3"
	devPendingID     = "00000000-0000-4000-8000-0000000000a4"
	devCreatedBy     = "dev@example.com"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding cluster database...")
	now := time.Now().UTC()

	// --- Ready: every controller reconciled at the current generation ---

	fmt.Println("  Inserting cluster dev-ready...")
	readyReports := []model.ControllerReport{
		report(devReadyID, "provisioner", 2, model.ConditionTrue, nil, now),
		report(devReadyID, "dns-operator", 2, model.ConditionTrue, nil, now),
	}
	insertCluster(ctx, pool, devReadyID, "dev-ready", model.ClusterSpec{
		Platform: model.PlatformSpec{Type: "kubernetes", Config: map[string]any{"region": "eu-west-1"}},
		Release:  &model.ReleaseSpec{Channel: "stable", Version: "1.31.2"},
		Networking: &model.NetworkingSpec{
			MachineCIDR: "10.0.0.0/16",
			ServiceCIDR: "172.30.0.0/16",
			PodCIDR:     "10.128.0.0/14",
		},
		DNS: &model.DNSSpec{BaseDomain: "dev.clusters.example.com"},
	}, 2, readyReports, now)

	// --- Progressing: one controller still on the previous generation ---

	fmt.Println("  Inserting cluster dev-progressing...")
	progressingReports := []model.ControllerReport{
		report(devProgressingID, "provisioner", 3, model.ConditionTrue, nil, now),
		report(devProgressingID, "dns-operator", 2, model.ConditionTrue, nil, now.Add(-10*time.Minute)),
	}
	insertCluster(ctx, pool, devProgressingID, "dev-progressing", model.ClusterSpec{
		Platform: model.PlatformSpec{Type: "openshift", Config: map[string]any{"region": "us-east-1"}},
		Release:  &model.ReleaseSpec{Channel: "candidate", Version: "4.17.8"},
	}, 3, progressingReports, now)

	// --- Failed: a current-generation report carries an error ---

	fmt.Println("  Inserting cluster dev-failed...")
	failedReports := []model.ControllerReport{
		report(devFailedID, "provisioner", 1, model.ConditionFalse, &model.ReportError{
			Message:   "quota exceeded in region eu-west-1",
			Code:      "QuotaExceeded",
			Retryable: true,
		}, now),
	}
	insertCluster(ctx, pool, devFailedID, "dev-failed", model.ClusterSpec{
		Platform: model.PlatformSpec{Type: "k3s"},
		Release:  &model.ReleaseSpec{Channel: "stable", Version: "1.30.6"},
	}, 1, failedReports, now)

	// --- Pending: no reports yet ---

	fmt.Println("  Inserting cluster dev-pending...")
	insertCluster(ctx, pool, devPendingID, "dev-pending", model.ClusterSpec{
		Platform: model.PlatformSpec{Type: "kubernetes"},
	}, 1, nil, now)

	fmt.Println("Done.")
}

// report builds a controller report with a single Available condition. A
// non-nil lastErr flips the condition reason to ReconcileError.
func report(clusterID, name string, og int64, condStatus string, lastErr *model.ReportError, reportedAt time.Time) model.ControllerReport {
	reason := "Reconciled"
	if lastErr != nil {
		reason = "ReconcileError"
	}

	var conds model.Conditions
	conds.Set(model.Condition{
		Type:   model.ConditionAvailable,
		Status: condStatus,
		Reason: reason,
	}, reportedAt)

	return model.ControllerReport{
		ClusterID:          clusterID,
		ControllerName:     name,
		ObservedGeneration: og,
		Conditions:         conds,
		LastError:          lastErr,
		ReportedAt:         reportedAt,
		UpdatedAt:          reportedAt,
	}
}

// insertCluster upserts a cluster and its reports. The stored status is
// aggregated from the reports with the same code the API uses, so seeded rows
// look exactly like rows the service wrote itself.
func insertCluster(ctx context.Context, pool *pgxpool.Pool, id, name string, spec model.ClusterSpec, generation int64, reports []model.ControllerReport, now time.Time) {
	out := status.Aggregate(generation, reports)
	st := model.ClusterStatus{
		Phase:              out.Phase,
		Message:            out.Message,
		Conditions:         status.BuildConditions(out, nil, now),
		ObservedGeneration: out.ObservedGeneration,
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal spec for %s: %v\n", name, err)
		os.Exit(1)
	}
	statusJSON, err := json.Marshal(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal status for %s: %v\n", name, err)
		os.Exit(1)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO clusters (id, name, spec, generation, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (id) DO UPDATE SET spec = EXCLUDED.spec, generation = EXCLUDED.generation,
		   status = EXCLUDED.status, updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
		id, name, specJSON, generation, statusJSON, devCreatedBy, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert cluster %s: %v\n", name, err)
		os.Exit(1)
	}

	for _, r := range reports {
		insertReport(ctx, pool, r)
	}
}

func insertReport(ctx context.Context, pool *pgxpool.Pool, r model.ControllerReport) {
	condsJSON, err := json.Marshal(r.Conditions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal conditions for %s: %v\n", r.ControllerName, err)
		os.Exit(1)
	}

	var lastErrJSON []byte
	if r.LastError != nil {
		lastErrJSON, err = json.Marshal(r.LastError)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal last error for %s: %v\n", r.ControllerName, err)
			os.Exit(1)
		}
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO controller_reports (cluster_id, controller_name, observed_generation, conditions, last_error, reported_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (cluster_id, controller_name) DO UPDATE SET observed_generation = EXCLUDED.observed_generation,
		   conditions = EXCLUDED.conditions, last_error = EXCLUDED.last_error,
		   reported_at = EXCLUDED.reported_at, updated_at = EXCLUDED.updated_at`,
		r.ClusterID, r.ControllerName, r.ObservedGeneration, condsJSON, lastErrJSON, r.ReportedAt, r.UpdatedAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert report %s/%s: %v\n", r.ClusterID, r.ControllerName, err)
		os.Exit(1)
	}
}
