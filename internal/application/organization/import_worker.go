package organization

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/sirupsen/logrus"
)

type ImportSource interface {
	Open(ctx context.Context, sourcePath string) (io.ReadCloser, error)
}

type importErrorSaver interface {
	SaveErrors(ctx context.Context, jobID string, errs []domain.ImportError) error
}

type importWorkerJobRepo interface {
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.ImportJob, error)
	Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error
	UpdateProgress(ctx context.Context, jobID string, progress domain.ImportProgress) error
	Complete(ctx context.Context, jobID string, summary domain.ImportSummary) error
	Requeue(ctx context.Context, jobID string, reason string) error
	Fail(ctx context.Context, jobID string, reason string) error
}

type ImportWorkerConfig struct {
	Workers           int
	BatchSize         int
	PollInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
}

type ImportWorker struct {
	repo   importWorkerJobRepo
	source ImportSource
	store  domain.RecordStore
	errs   importErrorSaver
	cfg    ImportWorkerConfig
	log    logrus.FieldLogger

	once sync.Once
}

func NewImportWorker(
	repo importWorkerJobRepo,
	source ImportSource,
	store domain.RecordStore,
	errs importErrorSaver,
	cfg ImportWorkerConfig,
	log logrus.FieldLogger,
) *ImportWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = orgimport.DefaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 2
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &ImportWorker{
		repo:   repo,
		source: source,
		store:  store,
		errs:   errs,
		cfg:    cfg,
		log:    log,
	}
}

func (w *ImportWorker) Start(ctx context.Context) {
	w.once.Do(func() {
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *ImportWorker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.repo.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			w.log.WithError(err).Warn("claim next import job failed")
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessJob(ctx, *job); err != nil {
			w.log.WithField("job_id", job.ID).WithError(err).Error("process import job failed")
		}
	}
}

// ProcessJob runs one claimed job. Failures before the first batch is written
// follow the attempts budget; later failures are terminal.
func (w *ImportWorker) ProcessJob(ctx context.Context, job domain.ImportJob) error {
	log := w.log.WithField("job_id", job.ID)

	reader, err := w.source.Open(ctx, job.SourcePath)
	if err != nil {
		return w.onProcessingError(ctx, job, fmt.Errorf("open import source: %w", err))
	}
	defer reader.Close()

	plan, err := orgimport.PlanImport(reader, job.ColumnOverrides, job.Decisions)
	if err != nil {
		return w.failJob(ctx, job, fmt.Errorf("prepare import: %w", err))
	}

	total := int64(len(plan.Rows))
	if err := w.repo.UpdateProgress(ctx, job.ID, domain.ImportProgress{TotalCount: total}); err != nil {
		return w.onProcessingError(ctx, job, fmt.Errorf("update initial progress: %w", err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	heartbeatErr := make(chan error, 1)
	go func() {
		heartbeatErr <- w.keepLeaseAlive(runCtx, job.ID, cancel)
	}()

	var progressErr error
	onProgress := func(done, rows int) {
		if err := w.repo.UpdateProgress(runCtx, job.ID, domain.ImportProgress{
			ProcessedCount: int64(done),
			TotalCount:     int64(rows),
		}); err != nil {
			progressErr = fmt.Errorf("update progress: %w", err)
			cancel()
		}
	}

	log.WithField("rows", total).Info("organization import job started")

	result := orgimport.NewExecutor(w.store, log).Run(runCtx, plan.Rows, orgimport.RunOptions{
		BatchSize:    w.cfg.BatchSize,
		SkipExisting: job.Decisions.SkipExisting,
		OnProgress:   onProgress,
	})
	cancel()
	leaseErr := <-heartbeatErr

	// The job state must still be recorded when the worker is shutting down.
	finishCtx := context.WithoutCancel(ctx)

	if len(result.Errors) > 0 {
		if err := w.errs.SaveErrors(finishCtx, job.ID, result.Errors); err != nil {
			log.WithError(err).Error("persist import errors failed")
		}
	}

	if progressErr != nil {
		return w.failJob(finishCtx, job, progressErr)
	}
	if leaseErr != nil {
		return w.failJob(finishCtx, job, leaseErr)
	}
	if result.Cancelled {
		return w.failJob(finishCtx, job, fmt.Errorf("import interrupted after %d of %d rows: %w", result.TotalProcessed, total, ctx.Err()))
	}

	summary := plan.Summary(result)
	if err := w.repo.UpdateProgress(finishCtx, job.ID, domain.ImportProgress{
		ProcessedCount: summary.TotalProcessed,
		TotalCount:     total,
		SuccessCount:   summary.SuccessCount,
		SkippedCount:   summary.SkippedCount,
		FailedCount:    summary.FailedCount,
	}); err != nil {
		return w.failJob(finishCtx, job, fmt.Errorf("update final progress: %w", err))
	}

	if err := w.repo.Complete(finishCtx, job.ID, summary); err != nil {
		return w.failJob(finishCtx, job, fmt.Errorf("complete job: %w", err))
	}

	log.WithFields(logrus.Fields{
		"success": summary.SuccessCount,
		"failed":  summary.FailedCount,
		"skipped": summary.SkippedCount,
	}).Info("organization import job finished")

	return nil
}

// keepLeaseAlive extends the job lease on every tick until ctx ends. A failed
// heartbeat stops the run through stop.
func (w *ImportWorker) keepLeaseAlive(ctx context.Context, jobID string, stop context.CancelFunc) error {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.repo.Heartbeat(ctx, jobID, w.cfg.LeaseDuration); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				stop()
				return fmt.Errorf("heartbeat: %w", err)
			}
		}
	}
}

func (w *ImportWorker) onProcessingError(ctx context.Context, job domain.ImportJob, err error) error {
	reason := truncateReason(err.Error())
	if job.Attempts < job.MaxAttempts {
		if requeueErr := w.repo.Requeue(ctx, job.ID, reason); requeueErr != nil {
			return fmt.Errorf("%v; requeue failed: %w", err, requeueErr)
		}
		return err
	}

	return w.failJob(ctx, job, err)
}

func (w *ImportWorker) failJob(ctx context.Context, job domain.ImportJob, err error) error {
	if failErr := w.repo.Fail(ctx, job.ID, truncateReason(err.Error())); failErr != nil {
		return errors.Join(err, fmt.Errorf("fail update failed: %w", failErr))
	}
	return err
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
