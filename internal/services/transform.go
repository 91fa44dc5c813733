package services

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/models"
	"github.com/stwalsh4118/crmsync/internal/storage"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Numeric CRM fields arrive as numbers, numeric strings or free text such as
// "85 m2". The coercions below read the leading number and fall back to 0.

// parseFloat returns the leading decimal number of v, or 0.
func parseFloat(v any) float64 {
	f, ok := leadingFloat(fieldText(v))
	if !ok {
		return 0
	}
	return f
}

// parseInt returns the leading integer of v, or 0.
func parseInt(v any) int {
	n, ok := leadingInt(fieldText(v))
	if !ok {
		return 0
	}
	return n
}

// optionalInt is parseInt for nullable columns. Zero and values without a
// leading integer are both stored as unset, so a zero never wins a minimum.
func optionalInt(v any) *int {
	n, ok := leadingInt(fieldText(v))
	if !ok || n == 0 {
		return nil
	}
	return &n
}

// roomCount coerces a room or bathroom count. A multi-valued field yields its
// largest integer entry. The result is never negative.
func roomCount(v any) int {
	if list, ok := v.([]any); ok {
		best := 0
		for _, item := range list {
			if n, ok := leadingInt(fieldText(item)); ok && n > best {
				best = n
			}
		}
		return best
	}
	return max(parseInt(v), 0)
}

// fieldText renders a decoded JSON value the way the CRM displays it.
func fieldText(v any) string {
	switch val := v.(type) {
	case nil, bool, map[string]any:
		return ""
	case []any:
		return strings.Join(lo.Map(val, func(item any, _ int) string { return fieldText(item) }), ",")
	default:
		return crm.FormatValue(val)
	}
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	mantissa := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	intDigits := end - mantissa
	fracDigits := 0
	if end < len(s) && s[end] == '.' {
		dot := end
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		fracDigits = end - dot - 1
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0, false
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		expDigits := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > expDigits {
			end = exp
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// normalizeLabel lower-cases s, strips diacritics and trims it.
func normalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}
	return strings.TrimSpace(stripped)
}

// projectStatus maps a CRM status label to a one-element status list, or nil
// when the label is missing or not one of the known statuses.
func projectStatus(v any) models.StringList {
	label, ok := v.(string)
	if !ok {
		return nil
	}
	id, ok := models.LookupStatus(normalizeLabel(label))
	if !ok {
		return nil
	}
	return models.StringList{string(id)}
}

// cityName keeps the part of a "City/Region" label before the first slash.
func cityName(full string) string {
	name, _, _ := strings.Cut(full, "/")
	return strings.TrimSpace(name)
}

// splitGallery turns a comma-joined list of image references into a list,
// dropping blank entries. The result is never nil.
func splitGallery(joined string) models.StringList {
	parts := lo.Map(strings.Split(joined, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return models.StringList(lo.Compact(parts))
}

// imageURLs keeps the URLs of .jpg, .jpeg and .png files.
func imageURLs(files []storage.File) models.StringList {
	return lo.FilterMap(files, func(f storage.File, _ int) (string, bool) {
		return f.URL, isImage(f.Name)
	})
}

func isImage(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}

// minOf returns the smallest non-nil value, or nil when there is none.
func minOf(values []*int) *int {
	var lowest *int
	for _, v := range values {
		if v != nil && (lowest == nil || *v < *lowest) {
			lowest = v
		}
	}
	if lowest == nil {
		return nil
	}
	result := *lowest
	return &result
}

// optionalString returns nil for an empty string.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// relatedIDs collects the non-empty values of key across records.
func relatedIDs(records []crm.Record, key string) models.StringList {
	return lo.FilterMap(records, func(r crm.Record, _ int) (string, bool) {
		id := r.String(key)
		return id, id != ""
	})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
