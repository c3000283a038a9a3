package model

import "time"

// TimestampLayout is UTC ISO-8601 with a Z suffix at second precision.
const TimestampLayout = "2006-01-02T15:04:05Z"

// UTCNow returns the current wall-clock time in the event timestamp
// format. Timestamps are carried as data; ordering never depends on
// them (event_seq is the logical clock).
func UTCNow() string {
	return time.Now().UTC().Format(TimestampLayout)
}
