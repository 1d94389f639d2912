package organization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

type GetImportJobInput struct {
	ID string
}

type ImportJobProgressOutput struct {
	Processed int64 `json:"processed"`
	Total     int64 `json:"total"`
	Success   int64 `json:"success"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

type GetImportJobOutput struct {
	ID              string                  `json:"id"`
	Status          string                  `json:"status"`
	SourcePath      string                  `json:"source_path"`
	Attempts        int                     `json:"attempts"`
	ColumnOverrides map[string]string       `json:"column_overrides,omitempty"`
	Decisions       domain.Decisions        `json:"decisions"`
	Progress        ImportJobProgressOutput `json:"progress"`
	ErrorMessage    string                  `json:"error_message,omitempty"`
	StartedAt       *time.Time              `json:"started_at,omitempty"`
	FinishedAt      *time.Time              `json:"finished_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

type GetImportJob interface {
	Execute(ctx context.Context, in GetImportJobInput) (GetImportJobOutput, error)
}

type importJobReader interface {
	Get(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

type getImportJob struct {
	repo importJobReader
}

func NewGetImportJob(repo importJobReader) GetImportJob {
	return &getImportJob{repo: repo}
}

func (uc *getImportJob) Execute(ctx context.Context, in GetImportJobInput) (GetImportJobOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetImportJobOutput{}, ErrInvalidImportJobID
	}

	job, err := uc.repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrImportJobNotFound) {
			return GetImportJobOutput{}, ErrImportJobNotFound
		}
		return GetImportJobOutput{}, fmt.Errorf("%w: %v", ErrGetImportJob, err)
	}

	return GetImportJobOutput{
		ID:              job.ID,
		Status:          job.Status,
		SourcePath:      job.SourcePath,
		Attempts:        job.Attempts,
		ColumnOverrides: job.ColumnOverrides,
		Decisions:       job.Decisions,
		Progress: ImportJobProgressOutput{
			Processed: job.Progress.ProcessedCount,
			Total:     job.Progress.TotalCount,
			Success:   job.Progress.SuccessCount,
			Skipped:   job.Progress.SkippedCount,
			Failed:    job.Progress.FailedCount,
		},
		ErrorMessage: job.ErrorMessage,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
		CreatedAt:    job.CreatedAt,
	}, nil
}
