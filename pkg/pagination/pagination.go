package pagination

import (
	"fmt"
	"strings"
)

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any listing can request.
	MaxPerPage = 100
)

// Params holds page-number pagination inputs from controllers.
type Params struct {
	Page    int
	PerPage int
}

// Normalize enforces the configured default and maximum page sizes and a
// minimum page number of 1.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page. Requests past the
// last page simply produce an empty result set.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// ParseOrdering turns a comma-separated ordering expression ("title,-price")
// into ORDER BY clauses, resolving each field through the allowed map of JSON
// field name to column. Unknown fields are rejected so user input never
// reaches the query builder unchecked.
func ParseOrdering(raw string, allowed map[string]string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	fields := strings.Split(raw, ",")
	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = field[1:]
		}

		column, ok := allowed[field]
		if !ok {
			return nil, fmt.Errorf("cannot order by field %q", field)
		}
		clauses = append(clauses, column+" "+direction)
	}
	return clauses, nil
}
