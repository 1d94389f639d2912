package organization

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
)

type PreviewImportInput struct {
	FileName        string
	Content         []byte
	ColumnOverrides map[string]string
}

type PreviewImportOutput struct {
	orgimport.Preview
	Warnings []string `json:"warnings,omitempty"`
}

type PreviewImport interface {
	Execute(ctx context.Context, in PreviewImportInput) (PreviewImportOutput, error)
}

type previewImport struct{}

func NewPreviewImport() PreviewImport {
	return &previewImport{}
}

func (uc *previewImport) Execute(ctx context.Context, in PreviewImportInput) (PreviewImportOutput, error) {
	check := orgimport.ValidateUpload(in.FileName, int64(len(in.Content)), in.Content)
	if err := check.Err(); err != nil {
		return PreviewImportOutput{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	parsed, err := orgimport.ParseCSV(bytes.NewReader(in.Content))
	if err != nil {
		return PreviewImportOutput{}, fmt.Errorf("%w: %v", ErrUnreadableCSV, err)
	}

	mappings, err := orgimport.MergeMappings(parsed.Headers, in.ColumnOverrides)
	if err != nil {
		return PreviewImportOutput{}, wrapMappingErr(err)
	}

	out := PreviewImportOutput{
		Preview:  orgimport.DeriveImportPreview(parsed, mappings),
		Warnings: check.Warnings,
	}
	if parsed.Truncated {
		out.Warnings = append(out.Warnings, fmt.Sprintf("only the first %d rows will be imported", orgimport.MaxRows))
	}
	return out, nil
}

func wrapMappingErr(err error) error {
	if errors.Is(err, orgimport.ErrUnknownField) {
		return fmt.Errorf("%w: %v", ErrInvalidColumnMapping, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreadableCSV, err)
}
