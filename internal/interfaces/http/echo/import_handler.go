package echo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/report"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type UploadStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (string, error)
}

type ImportUseCases struct {
	Preview    app.PreviewImport
	Start      app.StartImportOrganizations
	Run        app.RunImport
	GetJob     app.GetImportJob
	ListErrors app.ListImportErrors
}

type ImportHandler struct {
	useCases ImportUseCases
	uploads  UploadStore
}

type importOrganizationsRequest struct {
	SourcePath      string            `json:"source_path"`
	ColumnOverrides map[string]string `json:"column_overrides"`
	SkipDuplicates  bool              `json:"skip_duplicates"`
	SkipExisting    bool              `json:"skip_existing"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func NewImportHandler(useCases ImportUseCases, uploads UploadStore) *ImportHandler {
	return &ImportHandler{useCases: useCases, uploads: uploads}
}

// PreviewOrganizations takes a multipart "file" and an optional "mapping"
// form value holding a JSON object of header → field overrides.
func (h *ImportHandler) PreviewOrganizations(c echo.Context) error {
	upload, err := readUpload(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_upload", err.Error())
	}

	overrides, err := parseMapping(c.FormValue("mapping"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_mapping", "mapping must be a JSON object of header to field")
	}

	out, err := h.useCases.Preview.Execute(c.Request().Context(), app.PreviewImportInput{
		FileName:        upload.name,
		Content:         upload.content,
		ColumnOverrides: overrides,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to preview import")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// ImportOrganizations accepts either a JSON body naming a file already on
// the server or a multipart upload. Uploads with dry_run=true are executed
// synchronously and nothing is persisted.
func (h *ImportHandler) ImportOrganizations(c echo.Context) error {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return h.importFromPath(c)
	}

	upload, err := readUpload(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_upload", err.Error())
	}

	overrides, err := parseMapping(c.FormValue("mapping"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_mapping", "mapping must be a JSON object of header to field")
	}
	decisions := domain.Decisions{
		SkipDuplicates: formBool(c, "skip_duplicates"),
		SkipExisting:   formBool(c, "skip_existing"),
	}

	if formBool(c, "dry_run") {
		out, err := h.useCases.Run.Execute(c.Request().Context(), app.RunImportInput{
			FileName:        upload.name,
			Content:         upload.content,
			ColumnOverrides: overrides,
			Decisions:       decisions,
			DryRun:          true,
		})
		if err != nil {
			return writeUseCaseError(c, err, "failed to run import")
		}
		return c.JSON(http.StatusOK, apiResponse{Data: out})
	}

	check := orgimport.ValidateUpload(upload.name, int64(len(upload.content)), upload.content)
	if err := check.Err(); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_upload", err.Error())
	}

	sourcePath, err := h.uploads.Save(c.Request().Context(), upload.name, bytes.NewReader(upload.content))
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "internal_error", "failed to store upload")
	}

	out, err := h.useCases.Start.Execute(c.Request().Context(), app.StartImportOrganizationsInput{
		SourcePath:      sourcePath,
		ColumnOverrides: overrides,
		Decisions:       decisions,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to enqueue import job")
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

func (h *ImportHandler) importFromPath(c echo.Context) error {
	var req importOrganizationsRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.useCases.Start.Execute(c.Request().Context(), app.StartImportOrganizationsInput{
		SourcePath:      req.SourcePath,
		ColumnOverrides: req.ColumnOverrides,
		Decisions: domain.Decisions{
			SkipDuplicates: req.SkipDuplicates,
			SkipExisting:   req.SkipExisting,
		},
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to enqueue import job")
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

func (h *ImportHandler) GetImportJob(c echo.Context) error {
	out, err := h.useCases.GetJob.Execute(c.Request().Context(), app.GetImportJobInput{ID: c.Param("id")})
	if err != nil {
		return writeUseCaseError(c, err, "failed to get import job")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// ListImportErrors returns the rejected rows of a job as JSON, or as a
// spreadsheet when format=xlsx.
func (h *ImportHandler) ListImportErrors(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	out, err := h.useCases.ListErrors.Execute(c.Request().Context(), app.ListImportErrorsInput{
		JobID: c.Param("id"),
		Limit: limit,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to list import errors")
	}

	if strings.EqualFold(c.QueryParam("format"), "xlsx") {
		var buf bytes.Buffer
		if err := report.WriteImportErrors(&buf, out.Errors); err != nil {
			return writeError(c, http.StatusInternalServerError, "internal_error", "failed to build error report")
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="import-`+out.JobID+`-errors.xlsx"`)
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

type uploadedFile struct {
	name    string
	content []byte
}

func readUpload(c echo.Context) (uploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return uploadedFile{}, errors.New("a CSV file is required in the \"file\" field")
	}
	if header.Size > orgimport.MaxFileSize {
		return uploadedFile{}, errors.New("file exceeds the 10 MB limit")
	}

	f, err := header.Open()
	if err != nil {
		return uploadedFile{}, errors.New("uploaded file could not be read")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, orgimport.MaxFileSize+1))
	if err != nil {
		return uploadedFile{}, errors.New("uploaded file could not be read")
	}
	return uploadedFile{name: header.Filename, content: content}, nil
}

func parseMapping(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var overrides map[string]string
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

func formBool(c echo.Context, key string) bool {
	v, _ := strconv.ParseBool(c.FormValue(key))
	return v
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiResponse{Error: &errorBody{Code: code, Message: message}})
}

func writeUseCaseError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, app.ErrInvalidImportSource):
		return writeError(c, http.StatusBadRequest, "invalid_source", "source_path must be a .csv file")
	case errors.Is(err, app.ErrInvalidColumnMapping):
		return writeError(c, http.StatusBadRequest, "invalid_mapping", err.Error())
	case errors.Is(err, app.ErrInvalidUpload):
		return writeError(c, http.StatusBadRequest, "invalid_upload", err.Error())
	case errors.Is(err, app.ErrUnreadableCSV):
		return writeError(c, http.StatusUnprocessableEntity, "unreadable_csv", err.Error())
	case errors.Is(err, app.ErrInvalidImportJobID):
		return writeError(c, http.StatusBadRequest, "invalid_job_id", "id must be a valid UUID")
	case errors.Is(err, app.ErrImportJobNotFound):
		return writeError(c, http.StatusNotFound, "not_found", "import job not found")
	}
	c.Logger().Error(err)
	return writeError(c, http.StatusInternalServerError, "internal_error", fallback)
}
