package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/perola/clusterd/internal/events"
	"github.com/perola/clusterd/internal/metrics"
	"github.com/perola/clusterd/internal/model"
	"github.com/perola/clusterd/internal/status"
)

// Publisher receives events emitted after successful mutations.
type Publisher interface {
	Publish(evt events.Event)
}

type ClusterService struct {
	db     DB
	events Publisher
}

func NewClusterService(db DB, pub Publisher) *ClusterService {
	return &ClusterService{db: db, events: pub}
}

const clusterColumns = `id, name, spec, generation, status, created_by, created_at, updated_at`

const reportColumns = `cluster_id, controller_name, observed_generation, conditions, metadata, last_error, reported_at, updated_at`

func scanCluster(row pgx.Row) (*model.Cluster, error) {
	var c model.Cluster
	if err := row.Scan(&c.ID, &c.Name, &c.Spec, &c.Generation, &c.Status,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanReport(row pgx.Row) (*model.ControllerReport, error) {
	var r model.ControllerReport
	if err := row.Scan(&r.ClusterID, &r.ControllerName, &r.ObservedGeneration,
		&r.Conditions, &r.Metadata, &r.LastError, &r.ReportedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ClusterService) Create(ctx context.Context, name string, spec model.ClusterSpec, createdBy string) (*model.Cluster, error) {
	if name == "" {
		return nil, Invalidf("name is required")
	}
	if createdBy == "" {
		return nil, Invalidf("created_by is required")
	}
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &model.Cluster{
		ID:         uuid.NewString(),
		Name:       name,
		Spec:       spec,
		Generation: 1,
		Status:     buildStatus(1, nil, nil, now),
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO clusters (id, name, spec, generation, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Spec, c.Generation, c.Status, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, dbErr("create cluster", err)
	}

	metrics.Aggregations.WithLabelValues(c.Status.Phase).Inc()
	s.events.Publish(events.New(events.TypeClusterCreated, c.ID, c.Generation, "core"))
	return c, nil
}

func (s *ClusterService) GetByID(ctx context.Context, id string) (*model.Cluster, error) {
	if err := validateClusterID(id); err != nil {
		return nil, err
	}

	c, err := scanCluster(s.db.QueryRow(ctx,
		`SELECT `+clusterColumns+` FROM clusters WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("cluster %s not found", id)
	}
	if err != nil {
		return nil, dbErr(fmt.Sprintf("get cluster %s", id), err)
	}
	return c, nil
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Platform string
	Phase    string
}

// List returns a page of clusters plus the total match count. The total is
// read in a separate statement and may drift from the page under concurrent
// writes.
func (s *ClusterService) List(ctx context.Context, filter ListFilter, limit, offset int) ([]model.Cluster, int, error) {
	where := `WHERE deleted_at IS NULL`
	args := []any{}
	argIdx := 1

	if filter.Platform != "" {
		where += fmt.Sprintf(` AND spec->'platform'->>'type' = $%d`, argIdx)
		args = append(args, filter.Platform)
		argIdx++
	}
	if filter.Phase != "" {
		where += fmt.Sprintf(` AND status->>'phase' = $%d`, argIdx)
		args = append(args, filter.Phase)
		argIdx++
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM clusters `+where, args...).Scan(&total); err != nil {
		return nil, 0, dbErr("count clusters", err)
	}

	query := `SELECT ` + clusterColumns + ` FROM clusters ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dbErr("list clusters", err)
	}
	defer rows.Close()

	var clusters []model.Cluster
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, 0, dbErr("scan cluster", err)
		}
		clusters = append(clusters, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbErr("iterate clusters", err)
	}

	return clusters, total, nil
}

// UpdateSpec replaces the spec and bumps the generation by exactly one. When
// expectedGeneration is given and does not match, nothing is written and a
// conflict is returned. The stored status is re-aggregated against the new
// generation in the same transaction, so lagging reports immediately show as
// Progressing.
func (s *ClusterService) UpdateSpec(ctx context.Context, id string, spec model.ClusterSpec, expectedGeneration *int64) (*model.Cluster, error) {
	if err := validateClusterID(id); err != nil {
		return nil, err
	}
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	var updated *model.Cluster
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := lockCluster(ctx, tx, id)
		if err != nil {
			return err
		}

		if expectedGeneration != nil && *expectedGeneration != cur.Generation {
			metrics.UpdateConflicts.Inc()
			return Conflictf("cluster %s generation mismatch: expected %d, current %d",
				id, *expectedGeneration, cur.Generation)
		}

		reports, err := listReports(ctx, tx, id)
		if err != nil {
			return err
		}

		newGen := cur.Generation + 1
		now := time.Now().UTC()
		st := buildStatus(newGen, reports, cur.Status.Conditions, now)

		// The generation guard keeps the compare-and-swap inside the write
		// itself, on top of the row lock.
		tag, err := tx.Exec(ctx,
			`UPDATE clusters SET spec = $1, generation = $2, status = $3, updated_at = $4
			 WHERE id = $5 AND generation = $6 AND deleted_at IS NULL`,
			spec, newGen, st, now, id, cur.Generation)
		if err != nil {
			return dbErr(fmt.Sprintf("update cluster %s", id), err)
		}
		if tag.RowsAffected() == 0 {
			metrics.UpdateConflicts.Inc()
			return Conflictf("cluster %s was modified concurrently", id)
		}

		cur.Spec = spec
		cur.Generation = newGen
		cur.Status = st
		cur.UpdatedAt = now
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Aggregations.WithLabelValues(updated.Status.Phase).Inc()
	s.events.Publish(events.New(events.TypeClusterUpdated, updated.ID, updated.Generation, "core"))
	return updated, nil
}

// Delete soft-deletes a cluster and moves it to Terminating. Without force
// the delete is refused while reconciliation is in flight; force skips the
// phase check but still serializes against concurrent writers.
func (s *ClusterService) Delete(ctx context.Context, id string, force bool) error {
	if err := validateClusterID(id); err != nil {
		return err
	}

	var generation int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := lockCluster(ctx, tx, id)
		if err != nil {
			return err
		}

		if !force && cur.Status.Phase == model.PhaseProgressing {
			return Conflictf("cluster %s is still reconciling; use force to delete anyway", id)
		}

		now := time.Now().UTC()
		st := cur.Status
		st.Phase = model.PhaseTerminating
		st.Message = "cluster deletion requested"
		st.Conditions = status.BuildConditions(
			status.Outcome{Phase: model.PhaseTerminating, Message: st.Message},
			cur.Status.Conditions, now)

		if _, err := tx.Exec(ctx,
			`UPDATE clusters SET status = $1, deleted_at = $2, updated_at = $2 WHERE id = $3`,
			st, now, id); err != nil {
			return dbErr(fmt.Sprintf("delete cluster %s", id), err)
		}
		generation = cur.Generation
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(events.New(events.TypeClusterDeleted, id, generation, "core"))
	return nil
}

// PushReport stores a controller's latest report and re-aggregates the
// cluster status in the same transaction. Stale reports are stored as-is;
// freshness is judged at aggregation time, not at write time. Only a report
// claiming a generation that does not exist yet is rejected.
func (s *ClusterService) PushReport(ctx context.Context, clusterID string, rep model.ControllerReport) (*model.Cluster, error) {
	if err := validateClusterID(clusterID); err != nil {
		return nil, err
	}
	if err := validateReport(rep); err != nil {
		return nil, err
	}

	var updated *model.Cluster
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := lockCluster(ctx, tx, clusterID)
		if err != nil {
			return err
		}

		if rep.ObservedGeneration > cur.Generation {
			return Invalidf("observed_generation %d is beyond cluster generation %d",
				rep.ObservedGeneration, cur.Generation)
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx,
			`INSERT INTO controller_reports (cluster_id, controller_name, observed_generation, conditions, metadata, last_error, reported_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			 ON CONFLICT (cluster_id, controller_name) DO UPDATE SET
				observed_generation = EXCLUDED.observed_generation,
				conditions = EXCLUDED.conditions,
				metadata = EXCLUDED.metadata,
				last_error = EXCLUDED.last_error,
				updated_at = EXCLUDED.updated_at`,
			clusterID, rep.ControllerName, rep.ObservedGeneration,
			rep.Conditions, rep.Metadata, rep.LastError, now); err != nil {
			return dbErr(fmt.Sprintf("store report from %s", rep.ControllerName), err)
		}

		reports, err := listReports(ctx, tx, clusterID)
		if err != nil {
			return err
		}

		st := buildStatus(cur.Generation, reports, cur.Status.Conditions, now)
		if _, err := tx.Exec(ctx,
			`UPDATE clusters SET status = $1, updated_at = $2 WHERE id = $3`,
			st, now, clusterID); err != nil {
			return dbErr(fmt.Sprintf("update status for cluster %s", clusterID), err)
		}

		cur.Status = st
		cur.UpdatedAt = now
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReportsReceived.WithLabelValues(rep.ControllerName).Inc()
	metrics.Aggregations.WithLabelValues(updated.Status.Phase).Inc()
	s.events.Publish(events.New(events.TypeStatusChanged, clusterID, updated.Generation, "core"))
	return updated, nil
}

// GetStatus returns the persisted aggregate plus every stored report, each
// flagged stale when its observed generation trails the cluster's.
func (s *ClusterService) GetStatus(ctx context.Context, id string) (*model.ClusterStatus, []model.ControllerReport, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reports, err := listReports(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	for i := range reports {
		reports[i].Stale = reports[i].ObservedGeneration < c.Generation
	}

	return &c.Status, reports, nil
}

func (s *ClusterService) ListReports(ctx context.Context, clusterID string) ([]model.ControllerReport, error) {
	if err := validateClusterID(clusterID); err != nil {
		return nil, err
	}
	return listReports(ctx, s.db, clusterID)
}

// Reaggregate recomputes the stored status from the current report snapshot
// and reports whether anything changed. The write path already aggregates on
// every mutation; this is the self-heal entry point used by the sweeper and
// the manual reconcile endpoint.
func (s *ClusterService) Reaggregate(ctx context.Context, id string) (*model.Cluster, bool, error) {
	if err := validateClusterID(id); err != nil {
		return nil, false, err
	}

	var (
		updated *model.Cluster
		changed bool
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := lockCluster(ctx, tx, id)
		if err != nil {
			return err
		}

		reports, err := listReports(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		st := buildStatus(cur.Generation, reports, cur.Status.Conditions, now)
		changed = st.Phase != cur.Status.Phase ||
			st.Message != cur.Status.Message ||
			st.ObservedGeneration != cur.Status.ObservedGeneration
		if changed {
			if _, err := tx.Exec(ctx,
				`UPDATE clusters SET status = $1, updated_at = $2 WHERE id = $3`,
				st, now, id); err != nil {
				return dbErr(fmt.Sprintf("update status for cluster %s", id), err)
			}
			cur.Status = st
			cur.UpdatedAt = now
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		metrics.Aggregations.WithLabelValues(updated.Status.Phase).Inc()
		s.events.Publish(events.New(events.TypeStatusChanged, id, updated.Generation, "core"))
	}
	return updated, changed, nil
}

// ListLagging returns clusters whose status trails their generation and
// whose last write is older than the cutoff.
func (s *ClusterService) ListLagging(ctx context.Context, cutoff time.Time, limit int) ([]model.Cluster, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+clusterColumns+` FROM clusters
		 WHERE deleted_at IS NULL
		   AND (status->>'observed_generation')::bigint < generation
		   AND updated_at < $1
		 ORDER BY updated_at
		 LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, dbErr("list lagging clusters", err)
	}
	defer rows.Close()

	var clusters []model.Cluster
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, dbErr("scan cluster", err)
		}
		clusters = append(clusters, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate lagging clusters", err)
	}

	return clusters, nil
}

// ---------- internals ----------

func (s *ClusterService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return dbErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return dbErr("commit transaction", err)
	}
	return nil
}

// lockCluster reads a cluster under FOR UPDATE so spec updates, report
// pushes, and deletes for the same cluster serialize while other clusters
// proceed in parallel.
func lockCluster(ctx context.Context, tx pgx.Tx, id string) (*model.Cluster, error) {
	c, err := scanCluster(tx.QueryRow(ctx,
		`SELECT `+clusterColumns+` FROM clusters WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("cluster %s not found", id)
	}
	if err != nil {
		return nil, dbErr(fmt.Sprintf("lock cluster %s", id), err)
	}
	return c, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listReports(ctx context.Context, q querier, clusterID string) ([]model.ControllerReport, error) {
	rows, err := q.Query(ctx,
		`SELECT `+reportColumns+` FROM controller_reports WHERE cluster_id = $1 ORDER BY controller_name`,
		clusterID)
	if err != nil {
		return nil, dbErr(fmt.Sprintf("list reports for cluster %s", clusterID), err)
	}
	defer rows.Close()

	var reports []model.ControllerReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, dbErr("scan report", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate reports", err)
	}

	return reports, nil
}

// buildStatus aggregates a report snapshot into the stored status, carrying
// condition transition times through from the previous conditions.
func buildStatus(generation int64, reports []model.ControllerReport, previous model.Conditions, now time.Time) model.ClusterStatus {
	out := status.Aggregate(generation, reports)
	return model.ClusterStatus{
		Phase:              out.Phase,
		Message:            out.Message,
		Conditions:         status.BuildConditions(out, previous, now),
		ObservedGeneration: out.ObservedGeneration,
	}
}

func validateClusterID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Invalidf("invalid cluster id %q", id)
	}
	return nil
}

func validateSpec(spec model.ClusterSpec) error {
	if spec.Platform.Type == "" {
		return Invalidf("spec.platform.type is required")
	}
	return nil
}

func validateReport(rep model.ControllerReport) error {
	if rep.ControllerName == "" {
		return Invalidf("controller_name is required")
	}
	if rep.ObservedGeneration < 0 {
		return Invalidf("observed_generation must not be negative")
	}
	seen := make(map[string]struct{}, len(rep.Conditions))
	for _, cond := range rep.Conditions {
		if cond.Type == "" {
			return Invalidf("condition type must not be empty")
		}
		if _, dup := seen[cond.Type]; dup {
			return Invalidf("duplicate condition type %q in report", cond.Type)
		}
		seen[cond.Type] = struct{}{}
	}
	if rep.LastError != nil && rep.LastError.Message == "" {
		return Invalidf("last_error.message is required when last_error is set")
	}
	return nil
}
