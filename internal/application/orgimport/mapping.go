package orgimport

import (
	"fmt"
	"strings"
)

// MappedRow holds the sanitized, non-empty values of one CSV data row keyed
// by canonical field.
type MappedRow map[Field]string

func (r MappedRow) Name() string {
	return strings.TrimSpace(r[FieldName])
}

func (r MappedRow) Clone() MappedRow {
	out := make(MappedRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Strings flattens the row for persistence and reports.
func (r MappedRow) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}

// IndexedRow carries a row together with its 0-based position among the
// file's data rows.
type IndexedRow struct {
	Row           MappedRow
	OriginalIndex int
}

// MergeMappings applies user overrides on top of alias auto-detection. An
// empty override reverts that header to auto-detection.
func MergeMappings(headers []string, overrides map[string]string) (map[string]Field, error) {
	merged := MapHeadersToFields(headers)
	for header, override := range overrides {
		override = strings.TrimSpace(override)
		if override == "" {
			continue
		}
		field := Field(override)
		if !IsKnownField(field) {
			return nil, fmt.Errorf("%w: %q for column %q", ErrUnknownField, override, header)
		}
		if _, present := merged[header]; !present {
			continue
		}
		merged[header] = field
	}
	return merged, nil
}

// MapRow projects a raw record onto canonical fields. When two columns map
// to the same field the last non-empty value wins.
func MapRow(record []string, headers []string, mappings map[string]Field) MappedRow {
	row := make(MappedRow)
	for i, header := range headers {
		field := mappings[header]
		if field == "" || i >= len(record) {
			continue
		}
		value := SanitizeValue(record[i])
		if value == "" {
			continue
		}
		row[field] = value
	}
	return row
}

func MapRows(parsed ParsedCSV, mappings map[string]Field) []MappedRow {
	rows := make([]MappedRow, 0, len(parsed.Rows))
	for _, record := range parsed.Rows {
		rows = append(rows, MapRow(record, parsed.Headers, mappings))
	}
	return rows
}

// ParseTagNames splits a tags cell on commas or semicolons.
func ParseTagNames(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
