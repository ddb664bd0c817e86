package render

import (
	"strconv"
	"strings"

	"github.com/mamadbah2/herdview/internal/domain/models"
)

// Filter keeps the records with at least one non-null field containing query,
// ignoring case. A blank query keeps every record.
func Filter(records []models.Record, query string) []models.Record {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return records
	}

	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if Matches(rec, needle) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches reports whether any non-null field of rec contains the lower-cased needle.
func Matches(rec models.Record, needle string) bool {
	for _, f := range rec {
		if f.Value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(models.FormatValue(f.Value)), needle) {
			return true
		}
	}
	return false
}

// CountLabel formats the row-count indicator.
func CountLabel(filtered, total int) string {
	if filtered != total {
		return strconv.Itoa(filtered) + " / " + strconv.Itoa(total)
	}
	return strconv.Itoa(total)
}
