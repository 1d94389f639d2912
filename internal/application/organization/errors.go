package organization

import "errors"

var (
	ErrInvalidImportSource   = errors.New("invalid import source")
	ErrInvalidColumnMapping  = errors.New("invalid column mapping")
	ErrEnqueueImportJob      = errors.New("failed to enqueue import job")
	ErrInvalidUpload         = errors.New("invalid upload")
	ErrUnreadableCSV         = errors.New("unreadable csv")
	ErrInvalidImportJobID    = errors.New("invalid import job id")
	ErrImportJobNotFound     = errors.New("import job not found")
	ErrGetImportJob          = errors.New("failed to get import job")
	ErrListImportErrors      = errors.New("failed to list import errors")
	ErrInvalidOrganizationID = errors.New("invalid organization id")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrGetOrganizationByID   = errors.New("failed to get organization by id")
)
