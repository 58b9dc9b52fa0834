package summary

import (
	"time"

	"github.com/oncall-dev/oncall/internal/types"
)

// DayCount holds the per-urgency incident tallies for one calendar day.
type DayCount struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// DateBuckets seeds one bucket per calendar day between since and until
// (inclusive), with the days expressed in loc. Empty days stay in the output
// with zero counts.
func DateBuckets(since, until time.Time, loc *time.Location) map[string]*DayCount {
	buckets := make(map[string]*DayCount)

	day := startOfDay(since.In(loc))
	last := startOfDay(until.In(loc))

	for !day.After(last) {
		buckets[day.Format(types.DayFormat)] = &DayCount{}
		day = day.AddDate(0, 0, 1)
	}

	return buckets
}

// Count assigns an incident to the bucket of the calendar day its creation
// time falls on in loc. Incidents shifted outside the seeded range by the
// timezone conversion are ignored.
func Count(buckets map[string]*DayCount, createdAt time.Time, urgency string, loc *time.Location) {
	key := createdAt.UTC().In(loc).Format(types.DayFormat)

	bucket, ok := buckets[key]

	if !ok {
		return
	}

	switch urgency {
	case types.UrgencyLow:
		bucket.Low++
	case types.UrgencyHigh:
		bucket.High++
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
