package organization

import (
	"context"
	"time"
)

const (
	ResourceOrganizations = "organizations"
	ResourceTags          = "tags"
	ResourceSales         = "sales"
	ResourceSegments      = "segments"
)

// Record is a loosely typed row exchanged with a RecordStore.
type Record map[string]any

type CreateMeta struct {
	DryRun bool
}

type CreateParams struct {
	Data Record
	Meta CreateMeta
}

type Pagination struct {
	Page    int
	PerPage int
}

type Sort struct {
	Field string
	Order string
}

// ListParams filters use "<field>@in" keys with []string values.
type ListParams struct {
	Filter     map[string]any
	Pagination Pagination
	Sort       Sort
}

// RecordStore is the generic data-provider contract the import pipeline
// writes through.
type RecordStore interface {
	Create(ctx context.Context, resource string, params CreateParams) (Record, error)
	GetList(ctx context.Context, resource string, params ListParams) ([]Record, error)
}

type OrganizationQueryRepository interface {
	GetByID(ctx context.Context, id string) (*Organization, error)
}

type ImportJobRepository interface {
	Enqueue(ctx context.Context, spec ImportJobSpec) (string, error)
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*ImportJob, error)
	Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error
	UpdateProgress(ctx context.Context, jobID string, progress ImportProgress) error
	Complete(ctx context.Context, jobID string, summary ImportSummary) error
	Requeue(ctx context.Context, jobID string, reason string) error
	Fail(ctx context.Context, jobID string, reason string) error
	Get(ctx context.Context, jobID string) (*ImportJob, error)
}

type ImportErrorRepository interface {
	SaveErrors(ctx context.Context, jobID string, errs []ImportError) error
	ListErrors(ctx context.Context, jobID string, limit int) ([]ImportError, error)
}
