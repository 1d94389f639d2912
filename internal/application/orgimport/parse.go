package orgimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type ParsedCSV struct {
	Headers   []string
	Rows      [][]string
	Delimiter rune
	// Truncated is set when rows past MaxRows were dropped.
	Truncated bool
}

// ParseCSV reads a header row followed by data rows. Blank lines are
// skipped and short or long rows are kept as-is.
func ParseCSV(r io.Reader) (ParsedCSV, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delimiter := sniffDelimiter(br)

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ParsedCSV{}, ErrMissingHeader
	}
	if err != nil {
		return ParsedCSV{}, fmt.Errorf("%w: read header: %v", ErrParse, err)
	}

	parsed := ParsedCSV{
		Headers:   make([]string, len(header)),
		Delimiter: delimiter,
	}
	for i, h := range header {
		parsed.Headers[i] = strings.TrimSpace(h)
	}
	if isBlankRecord(parsed.Headers) {
		return ParsedCSV{}, ErrMissingHeader
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParsedCSV{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if isBlankRecord(record) {
			continue
		}
		if len(parsed.Rows) == MaxRows {
			parsed.Truncated = true
			break
		}
		parsed.Rows = append(parsed.Rows, record)
	}

	return parsed, nil
}

func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(sniffLength)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
