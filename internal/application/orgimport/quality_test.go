package orgimport_test

import (
	"slices"
	"testing"

	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

func namedRows(names ...string) []orgimport.MappedRow {
	rows := make([]orgimport.MappedRow, 0, len(names))
	for _, name := range names {
		row := orgimport.MappedRow{}
		if name != "" {
			row[orgimport.FieldName] = name
		}
		rows = append(rows, row)
	}
	return rows
}

func TestDetectDuplicatesCaseInsensitive(t *testing.T) {
	t.Parallel()

	report := orgimport.DetectDuplicates(namedRows("Acme Corp", "Tech Solutions", "ACME CORP", "Tech Solutions"))

	if len(report.Duplicates) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(report.Duplicates))
	}
	if report.TotalDuplicates != 2 {
		t.Fatalf("expected total 2, got %d", report.TotalDuplicates)
	}
	acme := report.Duplicates[0]
	if acme.Count != 2 || !slices.Equal(acme.Indices, []int{0, 2}) {
		t.Fatalf("unexpected acme group: %#v", acme)
	}
}

func TestDetectDuplicatesTrimsAndIgnoresBlankNames(t *testing.T) {
	t.Parallel()

	report := orgimport.DetectDuplicates(namedRows("  Acme Corp  ", "", "Acme Corp", "ACME CORP   ", ""))

	if len(report.Duplicates) != 1 {
		t.Fatalf("expected 1 group, got %d", len(report.Duplicates))
	}
	if report.Duplicates[0].Count != 3 {
		t.Fatalf("expected count 3, got %d", report.Duplicates[0].Count)
	}
	if !slices.Equal(report.Duplicates[0].Indices, []int{0, 2, 3}) {
		t.Fatalf("unexpected indices: %v", report.Duplicates[0].Indices)
	}
}

func TestDetectDuplicatesSortedByCount(t *testing.T) {
	t.Parallel()

	report := orgimport.DetectDuplicates(namedRows("Two", "Three", "Two", "Three", "Three"))
	if report.Duplicates[0].Count != 3 || report.Duplicates[1].Count != 2 {
		t.Fatalf("unexpected order: %#v", report.Duplicates)
	}
}

func TestDetectDuplicatesLargeGroup(t *testing.T) {
	t.Parallel()

	names := make([]string, 100)
	for i := range names {
		names[i] = "Same Name"
	}
	report := orgimport.DetectDuplicates(namedRows(names...))
	if report.TotalDuplicates != 99 {
		t.Fatalf("expected 99 duplicates, got %d", report.TotalDuplicates)
	}
}

func TestDetectDuplicatesNone(t *testing.T) {
	t.Parallel()

	report := orgimport.DetectDuplicates(namedRows("A", "B", "C"))
	if len(report.Duplicates) != 0 || report.TotalDuplicates != 0 {
		t.Fatalf("expected no duplicates, got %#v", report)
	}
}

func TestCountMissingNames(t *testing.T) {
	t.Parallel()

	rows := namedRows("A", "", "B")
	rows = append(rows, orgimport.MappedRow{orgimport.FieldName: "   "})
	if got := orgimport.CountMissingNames(rows); got != 2 {
		t.Fatalf("expected 2 missing names, got %d", got)
	}
}

func TestApplyDecisionsSkipDuplicatesKeepsFirst(t *testing.T) {
	t.Parallel()

	rows := namedRows("Acme", "Globex", "acme ", "", "Initech", "GLOBEX")
	out := orgimport.ApplyDecisions(rows, domain.Decisions{SkipDuplicates: true})

	var indices []int
	for _, row := range out {
		indices = append(indices, row.OriginalIndex)
	}
	if !slices.Equal(indices, []int{0, 1, 4}) {
		t.Fatalf("unexpected surviving indices: %v", indices)
	}
}

func TestApplyDecisionsWithoutSkipDropsOnlyNameless(t *testing.T) {
	t.Parallel()

	rows := namedRows("Acme", "", "Acme")
	out := orgimport.ApplyDecisions(rows, domain.Decisions{})
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[1].OriginalIndex != 2 {
		t.Fatalf("expected original index 2, got %d", out[1].OriginalIndex)
	}
}
