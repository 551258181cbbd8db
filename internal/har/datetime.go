package har

import (
	"fmt"
	"time"
)

// startedDateTime layouts seen in browser exports. RFC3339 accepts any
// fractional precision and offset; the others cover exporters that drop the
// colon in the offset or the offset altogether.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
}

// ParseHARDateTime parses a startedDateTime value. Timestamps are kept as raw
// strings in metrics; this is only used where an ordering on the time axis is needed.
func ParseHARDateTime(dateTime string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, dateTime); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime %q", dateTime)
}
