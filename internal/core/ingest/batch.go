package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/emdili/docrag/internal/core/registry"
	"github.com/emdili/docrag/internal/models"
)

// BatchDriver drains the pending backlog (upload_and_queue) through
// the pipeline. Run it from a scheduled task.
type BatchDriver struct {
	registry *registry.Registry
	pipeline *Pipeline
	workers  int
	logger   *slog.Logger
}

// NewBatchDriver builds a driver processing up to `workers` documents
// at a time. Concurrency is safe because every pending document is a
// distinct (owner, filename); values below 1 mean sequential.
func NewBatchDriver(reg *registry.Registry, pipeline *Pipeline, workers int, logger *slog.Logger) *BatchDriver {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchDriver{registry: reg, pipeline: pipeline, workers: workers, logger: logger}
}

// RunPendingBatch lists pending documents a page at a time and drives
// each through the pipeline until the listing is exhausted, returning
// the number of documents attempted. A single document's failure never
// halts the batch: the pipeline records the failed status itself and
// the driver only logs the returned error. A non-nil error here means
// the listing itself broke.
func (d *BatchDriver) RunPendingBatch(ctx context.Context, pageLimit int) (int, error) {
	var processed int64
	token := ""
	for {
		docs, next, err := d.registry.ListByStatus(ctx, models.StatusPending, pageLimit, token)
		if err != nil {
			return int(processed), err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.workers)
		for _, doc := range docs {
			g.Go(func() error {
				if err := d.pipeline.Process(gctx, doc.OwnerID, doc.Filename); err != nil {
					d.logger.Warn("batch document failed",
						"owner_id", doc.OwnerID, "filename", doc.Filename, "error", err)
				}
				atomic.AddInt64(&processed, 1)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors; failures are logged above
		if err := ctx.Err(); err != nil {
			return int(processed), err
		}

		if next == "" {
			break
		}
		token = next
	}
	return int(processed), nil
}
