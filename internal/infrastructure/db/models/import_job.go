package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportJob struct {
	ID                string                                `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SourcePath        string                                `gorm:"type:text;not null"`
	Status            string                                `gorm:"type:text;not null"`
	ColumnOverrides   datatypes.JSONType[map[string]string] `gorm:"type:jsonb;not null;default:'{}'"`
	SkipDuplicates    bool                                  `gorm:"not null;default:false"`
	SkipExisting      bool                                  `gorm:"not null;default:false"`
	ProgressProcessed int64                                 `gorm:"not null;default:0"`
	ProgressTotal     int64                                 `gorm:"not null;default:0"`
	SuccessCount      int64                                 `gorm:"not null;default:0"`
	SkippedCount      int64                                 `gorm:"not null;default:0"`
	FailedCount       int64                                 `gorm:"not null;default:0"`
	TotalRows         int64                                 `gorm:"not null;default:0"`
	MissingNameCount  int64                                 `gorm:"not null;default:0"`
	DuplicatesSkipped int64                                 `gorm:"not null;default:0"`
	DurationMs        int64                                 `gorm:"not null;default:0"`
	Attempts          int                                   `gorm:"not null;default:0"`
	MaxAttempts       int                                   `gorm:"not null;default:5"`
	ErrorMessage      *string                               `gorm:"type:text"`
	HeartbeatAt       *time.Time
	LeaseExpiresAt    *time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportJobError is one rejected CSV row. Data and Errors hold the row
// values and the per-field messages as JSON.
type ImportJobError struct {
	ID        int64          `gorm:"primaryKey"`
	JobID     string         `gorm:"type:uuid;not null;index"`
	RowNumber int            `gorm:"not null"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	Errors    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

func (ImportJobError) TableName() string {
	return "import_job_errors"
}
