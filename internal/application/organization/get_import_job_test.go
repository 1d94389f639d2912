package organization_test

import (
	"context"
	"errors"
	"testing"

	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

const jobID = "0e7c5f5e-6f0a-4b52-9d1f-3c1d2b6f8a10"

type fakeJobReader struct {
	job *domain.ImportJob
	err error
}

func (f *fakeJobReader) Get(ctx context.Context, id string) (*domain.ImportJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

type fakeErrorLister struct {
	rows     []domain.ImportError
	err      error
	gotLimit int
}

func (f *fakeErrorLister) ListErrors(ctx context.Context, id string, limit int) ([]domain.ImportError, error) {
	f.gotLimit = limit
	return f.rows, f.err
}

func TestGetImportJobSuccess(t *testing.T) {
	t.Parallel()

	uc := app.NewGetImportJob(&fakeJobReader{job: &domain.ImportJob{
		ID:         jobID,
		Status:     domain.JobStatusRunning,
		SourcePath: "orgs.csv",
		Attempts:   1,
		Decisions:  domain.Decisions{SkipExisting: true},
		Progress:   domain.ImportProgress{ProcessedCount: 20, TotalCount: 50, SuccessCount: 18, FailedCount: 2},
	}})

	out, err := uc.Execute(context.Background(), app.GetImportJobInput{ID: jobID})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Status != "running" || !out.Decisions.SkipExisting {
		t.Fatalf("unexpected output: %#v", out)
	}
	if out.Progress.Processed != 20 || out.Progress.Total != 50 || out.Progress.Failed != 2 {
		t.Fatalf("unexpected progress: %#v", out.Progress)
	}
}

func TestGetImportJobErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		err  error
		want error
	}{
		{name: "invalid id", id: "job-1", want: app.ErrInvalidImportJobID},
		{name: "not found", id: jobID, err: domain.ErrImportJobNotFound, want: app.ErrImportJobNotFound},
		{name: "repository", id: jobID, err: errors.New("db down"), want: app.ErrGetImportJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := app.NewGetImportJob(&fakeJobReader{err: tt.err})
			_, err := uc.Execute(context.Background(), app.GetImportJobInput{ID: tt.id})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestListImportErrorsSuccess(t *testing.T) {
	t.Parallel()

	lister := &fakeErrorLister{rows: []domain.ImportError{{
		Row:    3,
		Data:   map[string]string{"name": "Globex"},
		Errors: []domain.FieldError{{Field: "priority", Message: "must be one of: A, B, C, D"}},
	}}}
	uc := app.NewListImportErrors(&fakeJobReader{job: &domain.ImportJob{ID: jobID, Status: domain.JobStatusSucceeded}}, lister)

	out, err := uc.Execute(context.Background(), app.ListImportErrorsInput{JobID: jobID, Limit: 1_000_000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Status != "succeeded" || len(out.Errors) != 1 || out.Errors[0].Row != 3 {
		t.Fatalf("unexpected output: %#v", out)
	}
	if lister.gotLimit != 10000 {
		t.Fatalf("expected limit to be capped, got %d", lister.gotLimit)
	}
}

func TestListImportErrorsEmptyIsNotNil(t *testing.T) {
	t.Parallel()

	uc := app.NewListImportErrors(&fakeJobReader{job: &domain.ImportJob{ID: jobID}}, &fakeErrorLister{})

	out, err := uc.Execute(context.Background(), app.ListImportErrorsInput{JobID: jobID})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Errors == nil {
		t.Fatal("expected an empty slice")
	}
}

func TestListImportErrorsUnknownJob(t *testing.T) {
	t.Parallel()

	lister := &fakeErrorLister{}
	uc := app.NewListImportErrors(&fakeJobReader{err: domain.ErrImportJobNotFound}, lister)

	_, err := uc.Execute(context.Background(), app.ListImportErrorsInput{JobID: jobID})
	if !errors.Is(err, app.ErrImportJobNotFound) {
		t.Fatalf("expected ErrImportJobNotFound, got %v", err)
	}
	if lister.gotLimit != 0 {
		t.Fatal("errors must not be listed for an unknown job")
	}
}
