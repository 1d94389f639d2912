package organization

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/sirupsen/logrus"
)

type RunImportInput struct {
	FileName        string
	Content         []byte
	ColumnOverrides map[string]string
	Decisions       domain.Decisions
	DryRun          bool
	BatchSize       int
	OnProgress      orgimport.ProgressFunc
}

type RunImportOutput struct {
	Result  domain.ImportResult  `json:"result"`
	Summary domain.ImportSummary `json:"summary"`
}

// RunImport executes the whole pipeline in the caller's goroutine. It is
// used for dry runs and by the command line tool.
type RunImport interface {
	Execute(ctx context.Context, in RunImportInput) (RunImportOutput, error)
}

type runImport struct {
	store domain.RecordStore
	log   logrus.FieldLogger
}

func NewRunImport(store domain.RecordStore, log logrus.FieldLogger) RunImport {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &runImport{store: store, log: log}
}

func (uc *runImport) Execute(ctx context.Context, in RunImportInput) (RunImportOutput, error) {
	check := orgimport.ValidateUpload(in.FileName, int64(len(in.Content)), in.Content)
	if err := check.Err(); err != nil {
		return RunImportOutput{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	plan, err := orgimport.PlanImport(bytes.NewReader(in.Content), in.ColumnOverrides, in.Decisions)
	if err != nil {
		if errors.Is(err, orgimport.ErrUnknownField) {
			return RunImportOutput{}, wrapMappingErr(err)
		}
		return RunImportOutput{}, fmt.Errorf("%w: %v", ErrUnreadableCSV, err)
	}

	log := uc.log.WithFields(logrus.Fields{
		"file":    in.FileName,
		"rows":    len(plan.Rows),
		"dry_run": in.DryRun,
	})
	log.Info("organization import started")

	result := orgimport.NewExecutor(uc.store, log).Run(ctx, plan.Rows, orgimport.RunOptions{
		BatchSize:    in.BatchSize,
		DryRun:       in.DryRun,
		SkipExisting: in.Decisions.SkipExisting,
		OnProgress:   in.OnProgress,
	})

	log.WithFields(logrus.Fields{
		"success": result.SuccessCount,
		"failed":  result.FailedCount,
		"skipped": result.SkippedCount,
	}).Info("organization import finished")

	return RunImportOutput{Result: result, Summary: plan.Summary(result)}, nil
}
