package orgimport

import "errors"

var (
	ErrInvalidUpload = errors.New("invalid upload")
	ErrParse         = errors.New("csv parse failed")
	ErrMissingHeader = errors.New("csv header row is missing")
	ErrUnknownField  = errors.New("unknown import field")
)
