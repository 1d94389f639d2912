package organization

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

type StartImportOrganizationsInput struct {
	SourcePath      string
	ColumnOverrides map[string]string
	Decisions       domain.Decisions
}

type StartImportOrganizationsOutput struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type StartImportOrganizations interface {
	Execute(ctx context.Context, in StartImportOrganizationsInput) (StartImportOrganizationsOutput, error)
}

type importJobEnqueuer interface {
	Enqueue(ctx context.Context, spec domain.ImportJobSpec) (string, error)
}

type startImportOrganizations struct {
	importJobRepo importJobEnqueuer
}

func NewStartImportOrganizations(importJobRepo importJobEnqueuer) StartImportOrganizations {
	return &startImportOrganizations{importJobRepo: importJobRepo}
}

func (uc *startImportOrganizations) Execute(ctx context.Context, in StartImportOrganizationsInput) (StartImportOrganizationsOutput, error) {
	sourcePath := strings.TrimSpace(in.SourcePath)
	if sourcePath == "" || strings.ToLower(filepath.Ext(sourcePath)) != ".csv" {
		return StartImportOrganizationsOutput{}, ErrInvalidImportSource
	}

	if err := checkOverrides(in.ColumnOverrides); err != nil {
		return StartImportOrganizationsOutput{}, err
	}

	jobID, err := uc.importJobRepo.Enqueue(ctx, domain.ImportJobSpec{
		SourcePath:      sourcePath,
		ColumnOverrides: in.ColumnOverrides,
		Decisions:       in.Decisions,
	})
	if err != nil {
		return StartImportOrganizationsOutput{}, fmt.Errorf("%w: %v", ErrEnqueueImportJob, err)
	}

	return StartImportOrganizationsOutput{
		JobID:  jobID,
		Status: domain.JobStatusQueued,
	}, nil
}

func checkOverrides(overrides map[string]string) error {
	for header, field := range overrides {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !orgimport.IsKnownField(orgimport.Field(field)) {
			return fmt.Errorf("%w: unknown field %q for column %q", ErrInvalidColumnMapping, field, header)
		}
	}
	return nil
}
