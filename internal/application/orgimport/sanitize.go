package orgimport

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	MaxFileSize   = 10 * 1024 * 1024
	MaxRows       = 10000
	MaxCellLength = 1000

	sniffLength = 1024
)

type UploadIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UploadCheck struct {
	Errors   []UploadIssue `json:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

func (c UploadCheck) Valid() bool {
	return len(c.Errors) == 0
}

func (c UploadCheck) Err() error {
	if c.Valid() {
		return nil
	}
	messages := make([]string, 0, len(c.Errors))
	for _, issue := range c.Errors {
		messages = append(messages, issue.Message)
	}
	return fmt.Errorf("%w: %s", ErrInvalidUpload, strings.Join(messages, "; "))
}

var binarySignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},
	[]byte("\x89PNG"),
	[]byte("GIF8"),
	{0x1F, 0x8B},
	[]byte("PK\x03\x04"),
	[]byte("PK\x05\x06"),
	{0x00, 0x00, 0x00},
	[]byte("MZ"),
	[]byte("\x7FELF"),
	[]byte("%PDF"),
	{0xD0, 0xCF, 0x11, 0xE0},
}

var (
	delimiterPattern    = regexp.MustCompile(`[,\t;|]`)
	controlBytesPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ValidateUpload checks an uploaded file before it is parsed. head should
// hold the first bytes of the file; only the first 1KiB is inspected.
func ValidateUpload(name string, size int64, head []byte) UploadCheck {
	var check UploadCheck

	if size > MaxFileSize {
		check.Errors = append(check.Errors, UploadIssue{
			Field:   "size",
			Code:    "SIZE",
			Message: fmt.Sprintf("file size %d bytes exceeds limit of %d bytes", size, MaxFileSize),
		})
	}
	if size == 0 {
		check.Errors = append(check.Errors, UploadIssue{Field: "size", Code: "SIZE", Message: "file is empty"})
	}

	if strings.ToLower(filepath.Ext(name)) != ".csv" {
		check.Errors = append(check.Errors, UploadIssue{
			Field:   "extension",
			Code:    "MIME",
			Message: fmt.Sprintf("file must have .csv extension, got %q", name),
		})
	}

	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	if len(head) == 0 {
		return check
	}

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(head, sig) {
			check.Errors = append(check.Errors, UploadIssue{
				Field:   "content",
				Code:    "BINARY",
				Message: "file appears to be binary, only CSV text files are allowed",
			})
			break
		}
	}

	if !delimiterPattern.Match(head) {
		check.Errors = append(check.Errors, UploadIssue{
			Field:   "structure",
			Code:    "STRUCTURE",
			Message: "file does not appear to be CSV (no delimiters found)",
		})
	}

	if controlBytesPattern.Match(head) {
		check.Warnings = append(check.Warnings, "file may contain control characters or binary data")
	}

	return check
}

var (
	controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// SanitizeValue neutralizes spreadsheet formulas and strips markup from a
// single cell.
func SanitizeValue(value string) string {
	out := strings.TrimSpace(value)
	if out == "" {
		return ""
	}

	switch out[0] {
	case '=', '+', '-', '@', '\t', '\r':
		out = "'" + out
	}

	out = controlCharsPattern.ReplaceAllString(out, "")
	out = htmlTagPattern.ReplaceAllString(out, "")

	if runes := []rune(out); len(runes) > MaxCellLength {
		out = string(runes[:MaxCellLength])
	}
	return out
}
