package models

import (
	"fmt"
	"strconv"
	"time"
)

// Field is a single named value of a query result row.
type Field struct {
	Name  string
	Value any
}

// Record is one query result row with its fields in column order.
type Record []Field

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names lists the field names in column order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// FieldNames returns the column layout of a uniformly shaped record set,
// taken from its first record.
func FieldNames(records []Record) []string {
	if len(records) == 0 {
		return nil
	}
	return records[0].Names()
}

// FormatValue renders an engine value the way it is displayed and matched.
// Null values render as the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
