package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	httpecho "github.com/mohammadpnp/crm-import/internal/interfaces/http/echo"
)

const (
	testJobID = "0e7c5f5e-6f0a-4b52-9d1f-3c1d2b6f8a10"
	uploadCSV = "Company,City\nAcme,Austin\n"
)

type fakeStartUseCase struct {
	output app.StartImportOrganizationsOutput
	err    error
	got    app.StartImportOrganizationsInput
	called bool
}

func (f *fakeStartUseCase) Execute(ctx context.Context, in app.StartImportOrganizationsInput) (app.StartImportOrganizationsOutput, error) {
	f.called = true
	f.got = in
	if f.err != nil {
		return app.StartImportOrganizationsOutput{}, f.err
	}
	return f.output, nil
}

type fakePreviewUseCase struct {
	err error
	got app.PreviewImportInput
}

func (f *fakePreviewUseCase) Execute(ctx context.Context, in app.PreviewImportInput) (app.PreviewImportOutput, error) {
	f.got = in
	if f.err != nil {
		return app.PreviewImportOutput{}, f.err
	}
	out := app.PreviewImportOutput{}
	out.TotalRows = 1
	return out, nil
}

type fakeRunUseCase struct {
	got    app.RunImportInput
	called bool
}

func (f *fakeRunUseCase) Execute(ctx context.Context, in app.RunImportInput) (app.RunImportOutput, error) {
	f.called = true
	f.got = in
	return app.RunImportOutput{Result: domain.ImportResult{TotalProcessed: 1, SuccessCount: 1, DryRun: in.DryRun}}, nil
}

type fakeGetJobUseCase struct {
	err error
}

func (f *fakeGetJobUseCase) Execute(ctx context.Context, in app.GetImportJobInput) (app.GetImportJobOutput, error) {
	if f.err != nil {
		return app.GetImportJobOutput{}, f.err
	}
	return app.GetImportJobOutput{ID: in.ID, Status: "running"}, nil
}

type fakeListErrorsUseCase struct{}

func (f *fakeListErrorsUseCase) Execute(ctx context.Context, in app.ListImportErrorsInput) (app.ListImportErrorsOutput, error) {
	return app.ListImportErrorsOutput{
		JobID:  in.JobID,
		Status: "succeeded",
		Errors: []domain.ImportError{{
			Row:    3,
			Data:   map[string]string{"name": "Globex"},
			Errors: []domain.FieldError{{Field: "priority", Message: "must be one of: A, B, C, D"}},
		}},
	}, nil
}

type fakeUploads struct {
	savedName    string
	savedContent string
	err          error
}

func (f *fakeUploads) Save(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	content, _ := io.ReadAll(r)
	f.savedName = fileName
	f.savedContent = string(content)
	return "2026-10-15/stored.csv", nil
}

type handlerDeps struct {
	start   *fakeStartUseCase
	preview *fakePreviewUseCase
	run     *fakeRunUseCase
	getJob  *fakeGetJobUseCase
	uploads *fakeUploads
}

func newImportServer(deps handlerDeps) *echo.Echo {
	if deps.start == nil {
		deps.start = &fakeStartUseCase{}
	}
	if deps.preview == nil {
		deps.preview = &fakePreviewUseCase{}
	}
	if deps.run == nil {
		deps.run = &fakeRunUseCase{}
	}
	if deps.getJob == nil {
		deps.getJob = &fakeGetJobUseCase{}
	}
	if deps.uploads == nil {
		deps.uploads = &fakeUploads{}
	}

	e := echo.New()
	handler := httpecho.NewImportHandler(httpecho.ImportUseCases{
		Preview:    deps.preview,
		Start:      deps.start,
		Run:        deps.run,
		GetJob:     deps.getJob,
		ListErrors: &fakeListErrorsUseCase{},
	}, deps.uploads)
	httpecho.RegisterRoutes(e, handler, nil)
	return e
}

func multipartRequest(t *testing.T, target, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data, ok := got["data"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %#v", got)
	}
	return data
}

func TestImportHandlerFromPathSuccess(t *testing.T) {
	t.Parallel()

	start := &fakeStartUseCase{output: app.StartImportOrganizationsOutput{JobID: "job-1", Status: "queued"}}
	e := newImportServer(handlerDeps{start: start})

	body := []byte(`{"source_path":"orgs.csv","column_overrides":{"Rep":"sales_id"},"skip_duplicates":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/organizations", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["job_id"] != "job-1" {
		t.Fatalf("unexpected job_id: %#v", data["job_id"])
	}
	if !start.got.Decisions.SkipDuplicates || start.got.ColumnOverrides["Rep"] != "sales_id" {
		t.Fatalf("request was not forwarded: %#v", start.got)
	}
}

func TestImportHandlerBadJSON(t *testing.T) {
	t.Parallel()

	e := newImportServer(handlerDeps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/organizations", bytes.NewReader([]byte(`{"source_path":`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandlerUseCaseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid source", err: app.ErrInvalidImportSource, status: http.StatusBadRequest},
		{name: "invalid mapping", err: app.ErrInvalidColumnMapping, status: http.StatusBadRequest},
		{name: "internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newImportServer(handlerDeps{start: &fakeStartUseCase{err: tt.err}})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/organizations", bytes.NewReader([]byte(`{"source_path":"orgs.csv"}`)))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestImportHandlerUploadEnqueues(t *testing.T) {
	t.Parallel()

	start := &fakeStartUseCase{output: app.StartImportOrganizationsOutput{JobID: "job-2", Status: "queued"}}
	uploads := &fakeUploads{}
	e := newImportServer(handlerDeps{start: start, uploads: uploads})

	req := multipartRequest(t, "/api/v1/imports/organizations", "orgs.csv", uploadCSV, map[string]string{
		"mapping":       `{"City":"description"}`,
		"skip_existing": "true",
	})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if uploads.savedName != "orgs.csv" || uploads.savedContent != uploadCSV {
		t.Fatalf("upload was not stored: %#v", uploads)
	}
	if start.got.SourcePath != "2026-10-15/stored.csv" {
		t.Fatalf("expected stored path to be enqueued, got %q", start.got.SourcePath)
	}
	if !start.got.Decisions.SkipExisting || start.got.ColumnOverrides["City"] != "description" {
		t.Fatalf("unexpected start input: %#v", start.got)
	}
}

func TestImportHandlerDryRunRunsSynchronously(t *testing.T) {
	t.Parallel()

	start := &fakeStartUseCase{}
	run := &fakeRunUseCase{}
	uploads := &fakeUploads{}
	e := newImportServer(handlerDeps{start: start, run: run, uploads: uploads})

	req := multipartRequest(t, "/api/v1/imports/organizations", "orgs.csv", uploadCSV, map[string]string{"dry_run": "true"})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !run.called || !run.got.DryRun || string(run.got.Content) != uploadCSV {
		t.Fatalf("unexpected run input: %#v", run.got)
	}
	if start.called || uploads.savedName != "" {
		t.Fatal("dry run must not store or enqueue")
	}
}

func TestImportHandlerRejectsInvalidUpload(t *testing.T) {
	t.Parallel()

	start := &fakeStartUseCase{}
	e := newImportServer(handlerDeps{start: start})

	req := multipartRequest(t, "/api/v1/imports/organizations", "orgs.txt", uploadCSV, nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if start.called {
		t.Fatal("invalid upload must not be enqueued")
	}
}

func TestImportHandlerMissingFile(t *testing.T) {
	t.Parallel()

	e := newImportServer(handlerDeps{})

	req := multipartRequest(t, "/api/v1/imports/organizations/preview", "", "", map[string]string{"mapping": "{}"})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPreviewHandler(t *testing.T) {
	t.Parallel()

	preview := &fakePreviewUseCase{}
	e := newImportServer(handlerDeps{preview: preview})

	req := multipartRequest(t, "/api/v1/imports/organizations/preview", "orgs.csv", uploadCSV, map[string]string{
		"mapping": `{"City":"city"}`,
	})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["total_rows"] != float64(1) {
		t.Fatalf("unexpected preview: %#v", data)
	}
	if preview.got.FileName != "orgs.csv" || preview.got.ColumnOverrides["City"] != "city" {
		t.Fatalf("unexpected preview input: %#v", preview.got)
	}
}

func TestPreviewHandlerBadMapping(t *testing.T) {
	t.Parallel()

	e := newImportServer(handlerDeps{})

	req := multipartRequest(t, "/api/v1/imports/organizations/preview", "orgs.csv", uploadCSV, map[string]string{"mapping": "[1,2]"})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetImportJobHandler(t *testing.T) {
	t.Parallel()

	e := newImportServer(handlerDeps{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+testJobID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["status"] != "running" {
		t.Fatalf("unexpected job: %#v", data)
	}

	e = newImportServer(handlerDeps{getJob: &fakeGetJobUseCase{err: app.ErrImportJobNotFound}})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+testJobID, nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListImportErrorsHandlerFormats(t *testing.T) {
	t.Parallel()

	e := newImportServer(handlerDeps{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+testJobID+"/errors", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	errs, ok := decodeData(t, rec)["errors"].([]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("unexpected errors payload: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+testJobID+"/errors?format=xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip-based workbook")
	}
}
