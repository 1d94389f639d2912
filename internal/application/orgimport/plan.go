package orgimport

import (
	"io"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

// Plan is a parsed file with the user's mappings and decisions applied,
// ready to hand to an Executor.
type Plan struct {
	Parsed            ParsedCSV
	Mappings          map[string]Field
	Rows              []IndexedRow
	TotalRows         int
	MissingNameCount  int
	DuplicatesSkipped int
}

func PlanImport(r io.Reader, overrides map[string]string, decisions domain.Decisions) (Plan, error) {
	parsed, err := ParseCSV(r)
	if err != nil {
		return Plan{}, err
	}

	mappings, err := MergeMappings(parsed.Headers, overrides)
	if err != nil {
		return Plan{}, err
	}

	mapped := MapRows(parsed, mappings)
	rows := ApplyDecisions(mapped, decisions)
	missing := CountMissingNames(mapped)

	return Plan{
		Parsed:            parsed,
		Mappings:          mappings,
		Rows:              rows,
		TotalRows:         len(mapped),
		MissingNameCount:  missing,
		DuplicatesSkipped: len(mapped) - missing - len(rows),
	}, nil
}

// Summary combines a plan with the executor result it produced.
func (p Plan) Summary(result domain.ImportResult) domain.ImportSummary {
	return domain.ImportSummary{
		TotalRows:         int64(p.TotalRows),
		MissingNameCount:  int64(p.MissingNameCount),
		DuplicatesSkipped: int64(p.DuplicatesSkipped),
		TotalProcessed:    int64(result.TotalProcessed),
		SuccessCount:      int64(result.SuccessCount),
		SkippedCount:      int64(result.SkippedCount),
		FailedCount:       int64(result.FailedCount),
		Duration:          result.Duration,
	}
}
