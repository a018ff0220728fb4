package emergency

import (
	"context"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/internal/storage/models"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

const DefaultQueueBatchSize = 10

// QueueStore is the slice of the row store backing the durable check queue.
type QueueStore interface {
	PendingJobs(ctx context.Context, limit int) ([]models.EmergencyCheckJob, error)
	UpdateJobStatus(ctx context.Context, jobID int64, status, errorMessage string) error
}

// Checker is the trigger path a drained job runs.
type Checker interface {
	CheckAndTrigger(ctx context.Context, email string) (Result, error)
}

// QueueProcessor drains emergency_check_queue. Jobs are created by a storage
// trigger when suspicious samples land; each one is walked through
// pending -> processing -> completed|failed. Jobs run strictly sequentially
// within one drain to bound load on the store and the directory.
type QueueProcessor struct {
	store     QueueStore
	checker   Checker
	batchSize int
}

func NewQueueProcessor(store QueueStore, checker Checker, batchSize int) *QueueProcessor {
	if batchSize <= 0 {
		batchSize = DefaultQueueBatchSize
	}
	return &QueueProcessor{store: store, checker: checker, batchSize: batchSize}
}

// Drain processes up to one batch of pending jobs. A failure fetching the
// batch is logged and the drain is a no-op; per-job failures mark that job
// failed and move on. No job is left pending or processing when Drain
// returns.
func (p *QueueProcessor) Drain(ctx context.Context) {
	jobs, err := p.store.PendingJobs(ctx, p.batchSize)
	if err != nil {
		logger.Error("Failed to fetch pending emergency check jobs", zap.Error(err))
		return
	}

	if len(jobs) == 0 {
		return
	}

	logger.Info("Draining emergency check queue", zap.Int("jobs", len(jobs)))

	for _, job := range jobs {
		p.process(ctx, job)
	}
}

func (p *QueueProcessor) process(ctx context.Context, job models.EmergencyCheckJob) {
	logger.Info("Processing emergency check job",
		zap.Int64("job_id", job.ID),
		zap.String("email", job.Email),
		zap.String("metric_source", job.MetricSource),
	)

	if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusProcessing, ""); err != nil {
		logger.Error("Failed to mark job processing", zap.Int64("job_id", job.ID), zap.Error(err))
	}

	result, err := p.checker.CheckAndTrigger(ctx, job.Email)
	if err != nil {
		logger.Error("Emergency check job failed",
			zap.Int64("job_id", job.ID),
			zap.String("email", job.Email),
			zap.Error(err),
		)
		if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed, err.Error()); err != nil {
			logger.Error("Failed to mark job failed", zap.Int64("job_id", job.ID), zap.Error(err))
		}
		metrics.QueueJobsProcessed.WithLabelValues(models.JobStatusFailed).Inc()
		return
	}

	// Not triggering is still a completed check.
	if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted, ""); err != nil {
		logger.Error("Failed to mark job completed", zap.Int64("job_id", job.ID), zap.Error(err))
	}
	metrics.QueueJobsProcessed.WithLabelValues(models.JobStatusCompleted).Inc()

	logger.Info("Emergency check job completed",
		zap.Int64("job_id", job.ID),
		zap.Bool("triggered", result.Triggered),
		zap.String("reason", string(result.Reason)),
	)
}
