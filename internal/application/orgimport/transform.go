package orgimport

import (
	"strings"
	"unicode"
)

type TransformResult struct {
	Rows                []IndexedRow
	TransformationCount int

	transformed map[int]struct{}
}

// WasTransformed reports whether Rows[i] differs from its input row.
func (r TransformResult) WasTransformed(i int) bool {
	_, ok := r.transformed[i]
	return ok
}

// ApplyDataQualityTransformations returns normalized copies of rows. The
// input rows are never modified.
func ApplyDataQualityTransformations(rows []IndexedRow) TransformResult {
	result := TransformResult{
		Rows:        make([]IndexedRow, len(rows)),
		transformed: make(map[int]struct{}),
	}

	for i, in := range rows {
		row := in.Row.Clone()
		changed := false

		if v, ok := row[FieldPriority]; ok {
			if norm := normalizePriority(v); norm != v {
				row[FieldPriority] = norm
				changed = true
			}
		}
		if v, ok := row[FieldOrganizationType]; ok {
			if norm := strings.ToLower(strings.TrimSpace(v)); norm != v {
				row[FieldOrganizationType] = norm
				changed = true
			}
		}
		for _, field := range []Field{FieldWebsite, FieldLinkedInURL} {
			if v, ok := row[field]; ok {
				if norm := normalizeURL(v); norm != v {
					row[field] = norm
					changed = true
				}
			}
		}

		if changed {
			result.transformed[i] = struct{}{}
			result.TransformationCount++
		}
		result.Rows[i] = IndexedRow{Row: row, OriginalIndex: in.OriginalIndex}
	}

	return result
}

// normalizePriority turns values such as "a", "B - High" or "c)" into the
// bare letter. Anything else is returned unchanged for validation to reject.
func normalizePriority(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return value
	}
	letter := v[0]
	if letter < 'A' || letter > 'D' {
		return value
	}
	if len(v) > 1 && unicode.IsLetter(rune(v[1])) {
		return value
	}
	return string(letter)
}

func normalizeURL(value string) string {
	v := strings.TrimSpace(value)
	if v == "" || strings.Contains(v, "://") || !strings.Contains(v, ".") || strings.ContainsAny(v, " '") {
		return value
	}
	return "https://" + v
}
