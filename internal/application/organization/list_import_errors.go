package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

type ListImportErrorsInput struct {
	JobID string
	Limit int
}

type ListImportErrorsOutput struct {
	JobID  string               `json:"job_id"`
	Status string               `json:"status"`
	Errors []domain.ImportError `json:"errors"`
}

type ListImportErrors interface {
	Execute(ctx context.Context, in ListImportErrorsInput) (ListImportErrorsOutput, error)
}

type importErrorLister interface {
	ListErrors(ctx context.Context, jobID string, limit int) ([]domain.ImportError, error)
}

type listImportErrors struct {
	jobs   importJobReader
	errors importErrorLister
}

func NewListImportErrors(jobs importJobReader, errs importErrorLister) ListImportErrors {
	return &listImportErrors{jobs: jobs, errors: errs}
}

func (uc *listImportErrors) Execute(ctx context.Context, in ListImportErrorsInput) (ListImportErrorsOutput, error) {
	if _, err := uuid.Parse(in.JobID); err != nil {
		return ListImportErrorsOutput{}, ErrInvalidImportJobID
	}

	limit := in.Limit
	if limit <= 0 || limit > orgimport.MaxRows {
		limit = orgimport.MaxRows
	}

	job, err := uc.jobs.Get(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrImportJobNotFound) {
			return ListImportErrorsOutput{}, ErrImportJobNotFound
		}
		return ListImportErrorsOutput{}, fmt.Errorf("%w: %v", ErrListImportErrors, err)
	}

	rows, err := uc.errors.ListErrors(ctx, in.JobID, limit)
	if err != nil {
		return ListImportErrorsOutput{}, fmt.Errorf("%w: %v", ErrListImportErrors, err)
	}
	if rows == nil {
		rows = []domain.ImportError{}
	}

	return ListImportErrorsOutput{JobID: job.ID, Status: job.Status, Errors: rows}, nil
}
