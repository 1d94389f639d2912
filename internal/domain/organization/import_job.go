package organization

import "time"

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// Decisions are the user's confirmations taken after the preview.
type Decisions struct {
	SkipDuplicates bool `json:"skip_duplicates"`
	SkipExisting   bool `json:"skip_existing"`
}

type ImportJobSpec struct {
	SourcePath      string
	ColumnOverrides map[string]string
	Decisions       Decisions
}

type ImportJob struct {
	ID              string
	SourcePath      string
	Status          string
	Attempts        int
	MaxAttempts     int
	ColumnOverrides map[string]string
	Decisions       Decisions
	Progress        ImportProgress
	ErrorMessage    string
	StartedAt       *time.Time
	FinishedAt      *time.Time
	CreatedAt       time.Time
}

type ImportProgress struct {
	ProcessedCount int64
	TotalCount     int64
	SuccessCount   int64
	SkippedCount   int64
	FailedCount    int64
}

type ImportSummary struct {
	TotalRows         int64
	MissingNameCount  int64
	DuplicatesSkipped int64
	TotalProcessed    int64
	SuccessCount      int64
	SkippedCount      int64
	FailedCount       int64
	Duration          time.Duration
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportError is attributed to a 1-based CSV line, header included.
type ImportError struct {
	Row    int               `json:"row"`
	Data   map[string]string `json:"data"`
	Errors []FieldError      `json:"errors"`
}

type ImportResult struct {
	TotalProcessed int           `json:"total_processed"`
	SuccessCount   int           `json:"success_count"`
	SkippedCount   int           `json:"skipped_count"`
	FailedCount    int           `json:"failed_count"`
	Errors         []ImportError `json:"errors"`
	Duration       time.Duration `json:"duration"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	DryRun         bool          `json:"dry_run"`
	Cancelled      bool          `json:"cancelled"`
}
