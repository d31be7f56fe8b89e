package sqlstore

// convert.go normalizes caller supplied values to what the column type
// expects before they are bound as parameters.
//
// Registration payloads come from forms and from the document extraction
// service, so numbers arrive as strings, dates arrive in several layouts and
// booleans arrive as "sí"/"no". Both drivers then receive the same Go types
// regardless of where the record came from.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
)

// numericRegex validates a numeric string after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// DateLayout is how DATE values are bound and returned.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Coerce converts v to the Go type bound for col. Nil stays nil.
func Coerce(col schema.Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch col.Type {
	case schema.ColumnText:
		return toText(v), nil
	case schema.ColumnInteger:
		return toInteger(col.Name, v)
	case schema.ColumnNumeric:
		return toNumeric(col.Name, v)
	case schema.ColumnBool:
		return toBool(col.Name, v)
	case schema.ColumnDate:
		return toDate(col.Name, v)
	case schema.ColumnTimestamp:
		return toTimestamp(col.Name, v)
	}
	return v, nil
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

func toInteger(name string, v any) (any, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		if t != float64(int64(t)) {
			return nil, fmt.Errorf("invalid number for %s: %v is not an integer", name, t)
		}
		return int64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number for %s: %q", name, t)
		}
		return i, nil
	}
	return nil, fmt.Errorf("invalid number for %s: %T", name, v)
}

// toNumeric accepts numbers and numeric strings with currency symbols and
// thousands separators. Strings are returned cleaned, not parsed, to keep
// their precision.
func toNumeric(name string, v any) (any, error) {
	switch t := v.(type) {
	case int64, int, float64:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if !numericRegex.MatchString(s) {
			return nil, fmt.Errorf("invalid number for %s: %q", name, t)
		}
		return s, nil
	}
	return nil, fmt.Errorf("invalid number for %s: %T", name, v)
}

func toBool(name string, v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int64:
		return t != 0, nil
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "":
			return nil, nil
		case "true", "t", "yes", "y", "1", "si", "sí", "s":
			return true, nil
		case "false", "f", "no", "n", "0":
			return false, nil
		}
		return nil, fmt.Errorf("invalid enum for %s: %q is not a boolean", name, t)
	}
	return nil, fmt.Errorf("invalid enum for %s: %T is not a boolean", name, v)
}

// toDate returns dates as YYYY-MM-DD strings.
func toDate(name string, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(DateLayout), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d.Format(DateLayout), nil
			}
		}
		return nil, fmt.Errorf("invalid date for %s: %q", name, t)
	}
	return nil, fmt.Errorf("invalid date for %s: %T", name, v)
}

func toTimestamp(name string, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return nil, fmt.Errorf("invalid date for %s: %q", name, t)
	}
	return nil, fmt.Errorf("invalid date for %s: %T", name, v)
}

// toInt64 reads a generated id or count returned by either driver.
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(string(t), 10, 64)
		return i, err == nil
	}
	return 0, false
}
