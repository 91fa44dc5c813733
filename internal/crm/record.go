package crm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one row returned by the CRM. Numbers are kept as json.Number so
// large identifiers survive decoding intact.
type Record map[string]any

// Value returns the raw value stored under key. Select queries return lookup
// fields flattened ("Ciudad.id") while search results nest them
// ({"Atributo": {"id": ...}}); both shapes resolve with the dotted key.
func (r Record) Value(key string) any {
	if v, ok := r[key]; ok {
		return v
	}

	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil
	}
	switch nested := r[head].(type) {
	case map[string]any:
		return Record(nested).Value(rest)
	case Record:
		return nested.Value(rest)
	}
	return nil
}

// String returns the value under key rendered as a string, or "" when absent.
func (r Record) String(key string) string {
	return FormatValue(r.Value(key))
}

// ID returns the record's "id" field as a string.
func (r Record) ID() string {
	return r.String("id")
}

// Bool reports whether the value under key is a true boolean.
func (r Record) Bool(key string) bool {
	switch v := r.Value(key).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// FormatValue renders a decoded JSON value as a string; nil becomes "".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
