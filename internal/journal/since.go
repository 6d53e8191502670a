package journal

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParseSince turns a --since argument into a cutoff instant. It tries
// RFC 3339 and plain dates first, then natural language ("yesterday",
// "2 hours ago"), resolved relative to now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	result, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --since %q: %w", s, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("parse --since %q: not a recognized time expression", s)
	}
	return result.Time, nil
}
