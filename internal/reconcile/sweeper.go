// Package reconcile drives the periodic status sweep. The write path already
// re-aggregates on every mutation, so the sweeper only exists to repair
// clusters whose status fell behind, for example after a missed recompute or
// a controller that stopped reporting mid-rollout.
package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/perola/clusterd/internal/core"
	"github.com/perola/clusterd/internal/events"
	"github.com/perola/clusterd/internal/metrics"
	"github.com/perola/clusterd/internal/model"
)

// sweepBatchSize caps how many lagging clusters one cycle picks up.
const sweepBatchSize = 100

// ClusterStore is the slice of the cluster service the sweeper drives.
type ClusterStore interface {
	ListLagging(ctx context.Context, cutoff time.Time, limit int) ([]model.Cluster, error)
	Reaggregate(ctx context.Context, id string) (*model.Cluster, bool, error)
}

// Sweeper periodically re-aggregates clusters whose status trails their
// generation.
type Sweeper struct {
	logger   zerolog.Logger
	clusters ClusterStore
	events   core.Publisher

	interval      time.Duration
	staleAfter    time.Duration
	maxConcurrent int

	mu        sync.Mutex
	lastRun   time.Time
	lastSwept int
}

func NewSweeper(logger zerolog.Logger, clusters ClusterStore, pub core.Publisher,
	interval, staleAfter time.Duration, maxConcurrent int) *Sweeper {
	return &Sweeper{
		logger:        logger.With().Str("component", "sweeper").Logger(),
		clusters:      clusters,
		events:        pub,
		interval:      interval,
		staleAfter:    staleAfter,
		maxConcurrent: maxConcurrent,
	}
}

// RunLoop runs the periodic sweep until the context is canceled.
func (s *Sweeper) RunLoop(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("stale_after", s.staleAfter).
		Int("max_concurrent", s.maxConcurrent).
		Msg("starting reconcile sweep loop")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reconcile sweep loop stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("periodic sweep failed")
			}
		}
	}
}

// Sweep re-aggregates every lagging cluster once, bounded by maxConcurrent,
// and returns how many clusters were touched. A single cluster failing does
// not abort the rest of the cycle.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	metrics.SweepsTotal.Inc()

	lagging, err := s.clusters.ListLagging(ctx, start.Add(-s.staleAfter), sweepBatchSize)
	if err != nil {
		return 0, err
	}
	if len(lagging) == 0 {
		s.record(start, 0)
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	var swept atomic.Int64
	for _, c := range lagging {
		g.Go(func() error {
			updated, changed, err := s.clusters.Reaggregate(gctx, c.ID)
			if err != nil {
				s.logger.Warn().Err(err).Str("cluster_id", c.ID).Msg("sweep re-aggregation failed")
				return nil
			}
			swept.Add(1)
			s.events.Publish(events.New(events.TypeReconcile, updated.ID, updated.Generation, "sweeper"))
			s.logger.Debug().
				Str("cluster_id", updated.ID).
				Bool("changed", changed).
				Str("phase", updated.Status.Phase).
				Msg("cluster swept")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(swept.Load()), err
	}

	n := int(swept.Load())
	s.record(start, n)
	s.logger.Info().
		Int("lagging", len(lagging)).
		Int("swept", n).
		Dur("duration", time.Since(start)).
		Msg("sweep completed")
	return n, nil
}

// Trigger re-aggregates one cluster on demand, outside the periodic cycle.
func (s *Sweeper) Trigger(ctx context.Context, clusterID string) (*model.Cluster, bool, error) {
	c, changed, err := s.clusters.Reaggregate(ctx, clusterID)
	if err != nil {
		return nil, false, err
	}
	s.events.Publish(events.New(events.TypeReconcile, c.ID, c.Generation, "manual"))
	return c, changed, nil
}

// Stats reports the last completed sweep.
type Stats struct {
	LastRun   time.Time `json:"last_run"`
	LastSwept int       `json:"last_swept"`
}

func (s *Sweeper) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{LastRun: s.lastRun, LastSwept: s.lastSwept}
}

func (s *Sweeper) record(start time.Time, swept int) {
	s.mu.Lock()
	s.lastRun = start
	s.lastSwept = swept
	s.mu.Unlock()
	metrics.SweptClusters.Add(float64(swept))
}
