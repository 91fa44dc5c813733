package crm

import (
	"fmt"
	"strings"
)

// MaxLimit is the largest page a select query may request.
const MaxLimit = 2000

// SelectQuery is a COQL select statement. The paging window is kept out of
// the WHERE text and rendered as a trailing LIMIT clause.
type SelectQuery struct {
	Fields []string
	From   string
	Where  string
	Offset int
	Limit  int
}

// Page is one page of select query results.
type Page struct {
	Records []Record
	HasMore bool
	Count   int
}

// WithOffset returns a copy of q starting at offset.
func (q SelectQuery) WithOffset(offset int) SelectQuery {
	q.Offset = offset
	return q
}

// Validate checks that the query can be rendered.
func (q SelectQuery) Validate() error {
	if len(q.Fields) == 0 {
		return fmt.Errorf("select query requires at least one field")
	}
	if q.From == "" {
		return fmt.Errorf("select query requires a module")
	}
	if q.Offset < 0 {
		return fmt.Errorf("select query offset must be non-negative")
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return fmt.Errorf("select query limit must be between 1 and %d", MaxLimit)
	}
	return nil
}

// String renders the COQL text.
func (q SelectQuery) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.Fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.From)
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	fmt.Fprintf(&b, " LIMIT %d, %d", q.Offset, q.Limit)
	return b.String()
}

// EqualsCriteria builds a related-record search criteria of the form
// field:equals:value.
func EqualsCriteria(field, value string) string {
	return fmt.Sprintf("%s:equals:%s", field, value)
}
