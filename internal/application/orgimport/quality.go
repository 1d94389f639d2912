package orgimport

import (
	"sort"
	"strings"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

type DuplicateGroup struct {
	Name    string `json:"name"`
	Indices []int  `json:"indices"`
	Count   int    `json:"count"`
}

type DuplicateReport struct {
	Duplicates      []DuplicateGroup `json:"duplicates"`
	TotalDuplicates int              `json:"total_duplicates"`
}

func duplicateKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DetectDuplicates groups rows by case-insensitive trimmed name. Indices are
// 0-based positions in rows; rows with a blank name are ignored.
func DetectDuplicates(rows []MappedRow) DuplicateReport {
	groups := make(map[string]*DuplicateGroup)
	order := make([]string, 0)

	for i, row := range rows {
		key := duplicateKey(row[FieldName])
		if key == "" {
			continue
		}
		group, ok := groups[key]
		if !ok {
			group = &DuplicateGroup{Name: strings.TrimSpace(row[FieldName])}
			groups[key] = group
			order = append(order, key)
		}
		group.Indices = append(group.Indices, i)
		group.Count++
	}

	report := DuplicateReport{Duplicates: make([]DuplicateGroup, 0)}
	for _, key := range order {
		group := groups[key]
		if group.Count < 2 {
			continue
		}
		report.Duplicates = append(report.Duplicates, *group)
		report.TotalDuplicates += group.Count - 1
	}

	sort.SliceStable(report.Duplicates, func(i, j int) bool {
		return report.Duplicates[i].Count > report.Duplicates[j].Count
	})
	return report
}

func CountMissingNames(rows []MappedRow) int {
	var n int
	for _, row := range rows {
		if row.Name() == "" {
			n++
		}
	}
	return n
}

// ApplyDecisions drops nameless rows and, when requested, every repeat of a
// name after its first occurrence. Input order is preserved.
func ApplyDecisions(rows []MappedRow, decisions domain.Decisions) []IndexedRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]IndexedRow, 0, len(rows))
	for i, row := range rows {
		key := duplicateKey(row[FieldName])
		if key == "" {
			continue
		}
		if decisions.SkipDuplicates {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, IndexedRow{Row: row, OriginalIndex: i})
	}
	return out
}
