package organization

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrImportJobNotFound    = errors.New("import job not found")
	ErrUnknownResource      = errors.New("unknown resource")
	ErrUnsupportedFilter    = errors.New("unsupported filter")
)

// FieldErrors is the structured rejection returned by a RecordStore when the
// payload was refused field by field.
type FieldErrors struct {
	Errors map[string]string
}

func (e *FieldErrors) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Errors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
