package sqlutil

import (
	"strconv"
	"strings"
)

// EscapeString doubles single quotes and percent signs so the value can be
// embedded in a single-quoted SQL literal.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	return strings.ReplaceAll(s, "%", "%%")
}

// Quote returns s as a single-quoted, escaped SQL literal.
func Quote(s string) string {
	return "'" + EscapeString(s) + "'"
}

// QuoteOrNull is Quote, except an empty string becomes NULL.
func QuoteOrNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return Quote(s)
}

// BeginsWith returns a LIKE predicate suffix matching values starting with s.
func BeginsWith(s string) string {
	return " like '" + EscapeString(s) + "%'"
}

// Contains returns a LIKE predicate suffix matching values containing s.
func Contains(s string) string {
	return " like '%" + EscapeString(s) + "%'"
}

// IfNull returns def when v is nil.
func IfNull(v, def any) any {
	if v == nil {
		return def
	}
	return v
}

// IntOrNull renders v as an integer literal, or NULL when it does not parse.
// Like parseInt, a leading integer prefix is accepted ("12px" is 12).
func IntOrNull(v string) string {
	s := strings.TrimSpace(v)
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || end == 0 && (c == '-' || c == '+') {
			end++
			continue
		}
		break
	}
	i, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return "NULL"
	}
	return strconv.FormatInt(i, 10)
}

// CheckBox holds the literals a checkbox value maps to.
type CheckBox struct {
	Checked   string
	Unchecked string
}

// DefaultCheckBox maps checked to 1 and unchecked to 0.
var DefaultCheckBox = CheckBox{Checked: "1", Unchecked: "0"}

// CheckBoxVal maps an HTML form checkbox value to a SQL literal.
// An absent value (nil) yields def. Strings are checked when they read
// "yes", "on", "true" or "checked"; any other value is checked when truthy.
func CheckBoxVal(v any, def string, values CheckBox) string {
	if v == nil {
		return def
	}
	if values.Checked == "" {
		values.Checked = DefaultCheckBox.Checked
	}
	if values.Unchecked == "" {
		values.Unchecked = DefaultCheckBox.Unchecked
	}

	var checked bool
	switch val := v.(type) {
	case string:
		switch val {
		case "yes", "on", "true", "checked":
			checked = true
		}
	case bool:
		checked = val
	case int:
		checked = val != 0
	case int64:
		checked = val != 0
	case float64:
		checked = val != 0
	default:
		checked = true
	}

	if checked {
		return values.Checked
	}
	return values.Unchecked
}
