package admission

import (
	"strings"
	"time"
)

// JoinNames joins the non-empty parts with single spaces.
func JoinNames(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// FormatDate renders a wire date (or datetime) as "Jan 2, 2006"; unknown
// input falls back to a dash so tables stay aligned.
func FormatDate(value string) string {
	t, ok := parseWireTime(value)
	if !ok {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders a wire datetime as "Jan 2, 2006 3:04 PM".
func FormatDateTime(value string) string {
	t, ok := parseWireTime(value)
	if !ok {
		return "-"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

func parseWireTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02 15:04:05.000000", "2006-01-02 15:04:05", DateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Initial returns the uppercase first letter for avatar badges, "S" when the
// name is empty.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "S"
	}
	return strings.ToUpper(name[:1])
}
