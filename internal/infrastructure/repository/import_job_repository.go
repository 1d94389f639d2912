package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/db/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errJobNotRunning = errors.New("import job is not running")

type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) Enqueue(ctx context.Context, spec domain.ImportJobSpec) (string, error) {
	overrides := spec.ColumnOverrides
	if overrides == nil {
		overrides = map[string]string{}
	}

	job := models.ImportJob{
		SourcePath:      spec.SourcePath,
		Status:          domain.JobStatusQueued,
		ColumnOverrides: datatypes.NewJSONType(overrides),
		SkipDuplicates:  spec.Decisions.SkipDuplicates,
		SkipExisting:    spec.Decisions.SkipExisting,
	}

	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", fmt.Errorf("create import job: %w", err)
	}

	return job.ID, nil
}

// ClaimNext leases the oldest queued job, or a running job whose lease
// expired, to the caller. It returns nil when nothing is claimable.
func (r *ImportJobRepository) ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.ImportJob, error) {
	var claimed *models.ImportJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ImportJob
		now := time.Now().UTC()

		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("attempts < max_attempts").
			Where("status = ? OR (status = ? AND lease_expires_at < ?)", domain.JobStatusQueued, domain.JobStatusRunning, now).
			Order("created_at ASC").
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		lease := now.Add(leaseDuration)
		updates := map[string]any{
			"status":           domain.JobStatusRunning,
			"attempts":         gorm.Expr("attempts + 1"),
			"heartbeat_at":     now,
			"lease_expires_at": lease,
			"error_message":    nil,
			"updated_at":       now,
		}
		if row.StartedAt == nil {
			updates["started_at"] = now
			row.StartedAt = &now
		}
		if err := tx.Model(&models.ImportJob{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
			return err
		}

		row.Status = domain.JobStatusRunning
		row.Attempts++
		row.HeartbeatAt = &now
		row.LeaseExpiresAt = &lease
		claimed = &row
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim import job: %w", err)
	}
	if claimed == nil {
		return nil, nil
	}

	job := toDomainImportJob(*claimed)
	return &job, nil
}

func (r *ImportJobRepository) Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error {
	now := time.Now().UTC()
	return r.updateRunning(ctx, jobID, "heartbeat", map[string]any{
		"heartbeat_at":     now,
		"lease_expires_at": now.Add(leaseDuration),
		"updated_at":       now,
	})
}

func (r *ImportJobRepository) UpdateProgress(ctx context.Context, jobID string, progress domain.ImportProgress) error {
	return r.updateRunning(ctx, jobID, "update progress", map[string]any{
		"progress_processed": progress.ProcessedCount,
		"progress_total":     progress.TotalCount,
		"success_count":      progress.SuccessCount,
		"skipped_count":      progress.SkippedCount,
		"failed_count":       progress.FailedCount,
		"updated_at":         time.Now().UTC(),
	})
}

func (r *ImportJobRepository) Complete(ctx context.Context, jobID string, summary domain.ImportSummary) error {
	now := time.Now().UTC()
	return r.updateRunning(ctx, jobID, "complete", map[string]any{
		"status":             domain.JobStatusSucceeded,
		"progress_processed": summary.TotalProcessed,
		"progress_total":     summary.TotalProcessed,
		"success_count":      summary.SuccessCount,
		"skipped_count":      summary.SkippedCount,
		"failed_count":       summary.FailedCount,
		"total_rows":         summary.TotalRows,
		"missing_name_count": summary.MissingNameCount,
		"duplicates_skipped": summary.DuplicatesSkipped,
		"duration_ms":        summary.Duration.Milliseconds(),
		"lease_expires_at":   nil,
		"finished_at":        now,
		"updated_at":         now,
	})
}

// Requeue returns a job to the queue after a retryable failure.
func (r *ImportJobRepository) Requeue(ctx context.Context, jobID string, reason string) error {
	return r.updateRunning(ctx, jobID, "requeue", map[string]any{
		"status":           domain.JobStatusQueued,
		"error_message":    reason,
		"lease_expires_at": nil,
		"updated_at":       time.Now().UTC(),
	})
}

func (r *ImportJobRepository) Fail(ctx context.Context, jobID string, reason string) error {
	now := time.Now().UTC()
	return r.updateRunning(ctx, jobID, "fail", map[string]any{
		"status":           domain.JobStatusFailed,
		"error_message":    reason,
		"lease_expires_at": nil,
		"finished_at":      now,
		"updated_at":       now,
	})
}

func (r *ImportJobRepository) Get(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	var row models.ImportJob
	if err := r.db.WithContext(ctx).First(&row, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrImportJobNotFound
		}
		return nil, fmt.Errorf("get import job: %w", err)
	}

	job := toDomainImportJob(row)
	return &job, nil
}

// updateRunning applies updates only while the job is still running, so a
// worker that lost its lease cannot overwrite a newer owner's state.
func (r *ImportJobRepository) updateRunning(ctx context.Context, jobID, op string, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ? AND status = ?", jobID, domain.JobStatusRunning).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("%s import job: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s import job %s: %w", op, jobID, errJobNotRunning)
	}
	return nil
}

func toDomainImportJob(row models.ImportJob) domain.ImportJob {
	job := domain.ImportJob{
		ID:              row.ID,
		SourcePath:      row.SourcePath,
		Status:          row.Status,
		Attempts:        row.Attempts,
		MaxAttempts:     row.MaxAttempts,
		ColumnOverrides: row.ColumnOverrides.Data(),
		Decisions: domain.Decisions{
			SkipDuplicates: row.SkipDuplicates,
			SkipExisting:   row.SkipExisting,
		},
		Progress: domain.ImportProgress{
			ProcessedCount: row.ProgressProcessed,
			TotalCount:     row.ProgressTotal,
			SuccessCount:   row.SuccessCount,
			SkippedCount:   row.SkippedCount,
			FailedCount:    row.FailedCount,
		},
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
		CreatedAt:  row.CreatedAt,
	}
	if row.ErrorMessage != nil {
		job.ErrorMessage = *row.ErrorMessage
	}
	return job
}
