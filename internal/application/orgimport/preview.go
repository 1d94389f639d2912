package orgimport

import "strings"

const (
	sampleRowCount     = 5
	sampleScanPrimary  = 10
	sampleScanFallback = 50

	// HeaderOffset converts a 0-based data row index to its 1-based CSV
	// line number, counting the header line.
	HeaderOffset = 2
)

type ColumnMapping struct {
	Source      string  `json:"source"`
	Target      Field   `json:"target"`
	Confidence  float64 `json:"confidence"`
	SampleValue string  `json:"sample_value,omitempty"`
	Suggestions []Field `json:"suggestions,omitempty"`
}

type Preview struct {
	Mappings              []ColumnMapping  `json:"mappings"`
	SampleRows            []MappedRow      `json:"sample_rows"`
	ValidCount            int              `json:"valid_count"`
	TotalRows             int              `json:"total_rows"`
	NewTags               []string         `json:"new_tags"`
	Duplicates            []DuplicateGroup `json:"duplicates"`
	TotalDuplicates       int              `json:"total_duplicates"`
	LowConfidenceMappings int              `json:"low_confidence_mappings"`
	MissingNameCount      int              `json:"missing_name_count"`
	Truncated             bool             `json:"truncated"`
}

// DeriveImportPreview summarizes what an import with the given mappings
// would do. It has no side effects and can be recomputed on every edit.
func DeriveImportPreview(parsed ParsedCSV, mappings map[string]Field) Preview {
	rows := MapRows(parsed, mappings)

	preview := Preview{
		Mappings:   make([]ColumnMapping, 0, len(parsed.Headers)),
		SampleRows: make([]MappedRow, 0, sampleRowCount),
		TotalRows:  len(rows),
		NewTags:    collectTagNames(rows),
		Truncated:  parsed.Truncated,
	}

	for col, header := range parsed.Headers {
		if header == "" {
			continue
		}
		mapping := ColumnMapping{
			Source:      header,
			Target:      mappings[header],
			SampleValue: sampleValue(parsed.Rows, col),
		}
		if mapping.Target != "" {
			mapping.Confidence = 1
		} else {
			mapping.Suggestions = SuggestFields(header)
			preview.LowConfidenceMappings++
		}
		preview.Mappings = append(preview.Mappings, mapping)
	}

	for i, row := range rows {
		if i < sampleRowCount {
			preview.SampleRows = append(preview.SampleRows, row)
		}
		if row.Name() != "" {
			preview.ValidCount++
		}
	}
	preview.MissingNameCount = preview.TotalRows - preview.ValidCount

	report := DetectDuplicates(rows)
	preview.TotalDuplicates = report.TotalDuplicates
	preview.Duplicates = make([]DuplicateGroup, 0, len(report.Duplicates))
	for _, group := range report.Duplicates {
		lines := make([]int, len(group.Indices))
		for i, idx := range group.Indices {
			lines[i] = idx + HeaderOffset
		}
		preview.Duplicates = append(preview.Duplicates, DuplicateGroup{
			Name:    group.Name,
			Indices: lines,
			Count:   group.Count,
		})
	}

	return preview
}

func sampleValue(records [][]string, col int) string {
	scan := func(limit int) string {
		for i := 0; i < len(records) && i < limit; i++ {
			if col < len(records[i]) {
				if v := SanitizeValue(records[i][col]); v != "" {
					return v
				}
			}
		}
		return ""
	}
	if v := scan(sampleScanPrimary); v != "" {
		return v
	}
	return scan(sampleScanFallback)
}

func collectTagNames(rows []MappedRow) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, row := range rows {
		for _, name := range ParseTagNames(row[FieldTags]) {
			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
