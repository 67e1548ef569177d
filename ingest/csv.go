// Package ingest extracts candidate addresses from CSV files. The
// validation engine re-normalizes every candidate independently; the
// filtering here only keeps obvious junk out of a batch.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// shapePattern is the coarse "looks like an email" filter applied to
// lowercased values during extraction.
var shapePattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// ErrColumnNotFound is returned when the requested column is missing
// from the file header.
var ErrColumnNotFound = errors.New("ingest: column not found")

// File is a parsed CSV file: a header row and its data records.
type File struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV parses r as a comma-separated file with a header row.
// Ragged rows are tolerated; short rows simply miss trailing columns.
func ReadCSV(r io.Reader) (*File, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("ingest: empty file")
	}
	return &File{Columns: records[0], Rows: records[1:]}, nil
}

func (f *File) columnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ExtractEmails returns the unique, email-shaped values of the named
// column, trimmed and lowercased, preserving first-seen order.
func (f *File) ExtractEmails(column string) ([]string, error) {
	idx := f.columnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	seen := make(map[string]struct{})
	var emails []string
	for _, row := range f.Rows {
		if idx >= len(row) {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(row[idx]))
		if v == "" || !shapePattern.MatchString(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		emails = append(emails, v)
	}
	return emails, nil
}

// Info describes the structure of a parsed file.
type Info struct {
	TotalRows        int
	TotalColumns     int
	Columns          []string
	EmailLikeColumns []string
}

// Inspect reports the file's shape and which columns look like they
// hold email addresses, judged by the header name.
func (f *File) Inspect() Info {
	info := Info{
		TotalRows:    len(f.Rows),
		TotalColumns: len(f.Columns),
		Columns:      f.Columns,
	}
	for _, c := range f.Columns {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "mail") {
			info.EmailLikeColumns = append(info.EmailLikeColumns, c)
		}
	}
	return info
}

// Preview returns up to limit non-blank raw values from the named
// column, for showing the user before a run.
func (f *File) Preview(column string, limit int) []string {
	idx := f.columnIndex(column)
	if idx < 0 {
		return nil
	}
	var out []string
	for _, row := range f.Rows {
		if len(out) >= limit {
			break
		}
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DomainCount is the number of candidates seen for one domain.
type DomainCount struct {
	Domain string
	Count  int
}

// DomainStats counts candidates per domain, most frequent first; ties
// resolve alphabetically so the output is stable.
func DomainStats(emails []string) []DomainCount {
	counts := make(map[string]int)
	for _, e := range emails {
		if at := strings.Index(e, "@"); at >= 0 {
			counts[e[at+1:]]++
		}
	}
	out := make([]DomainCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DomainCount{Domain: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}
