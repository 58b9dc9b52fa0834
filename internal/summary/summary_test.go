package summary

import (
	"testing"
	"time"

	"github.com/oncall-dev/oncall/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDate(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestDateBucketsCoversEveryDayInclusive(t *testing.T) {
	buckets := DateBuckets(utcDate(2023, 1, 1, 0, 0), utcDate(2023, 1, 7, 0, 0), time.UTC)

	require.Len(t, buckets, 7)

	for day := 1; day <= 7; day++ {
		key := utcDate(2023, 1, day, 0, 0).Format(types.DayFormat)

		bucket, ok := buckets[key]
		require.True(t, ok, "missing bucket for %s", key)
		assert.Equal(t, 0, bucket.Low)
		assert.Equal(t, 0, bucket.High)
	}
}

func TestDateBucketsSingleDay(t *testing.T) {
	day := utcDate(2023, 6, 15, 0, 0)

	buckets := DateBuckets(day, day, time.UTC)

	require.Len(t, buckets, 1)
	assert.Contains(t, buckets, "2023-06-15")
}

func TestCountIncrementsMatchingUrgency(t *testing.T) {
	buckets := DateBuckets(utcDate(2023, 1, 1, 0, 0), utcDate(2023, 1, 2, 0, 0), time.UTC)

	Count(buckets, utcDate(2023, 1, 1, 12, 0), types.UrgencyHigh, time.UTC)
	Count(buckets, utcDate(2023, 1, 1, 13, 0), types.UrgencyLow, time.UTC)
	Count(buckets, utcDate(2023, 1, 1, 14, 0), types.UrgencyLow, time.UTC)

	assert.Equal(t, 1, buckets["2023-01-01"].High)
	assert.Equal(t, 2, buckets["2023-01-01"].Low)
	assert.Equal(t, 0, buckets["2023-01-02"].High)
	assert.Equal(t, 0, buckets["2023-01-02"].Low)
}

func TestCountLocalizesBeforeBucketing(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	since := time.Date(2023, 1, 1, 0, 0, 0, 0, loc)
	until := time.Date(2023, 1, 2, 0, 0, 0, 0, loc)

	buckets := DateBuckets(since, until, loc)

	// 23:30 UTC is 18:30 in New York, so the incident stays on Jan 1
	Count(buckets, utcDate(2023, 1, 1, 23, 30), types.UrgencyHigh, loc)

	assert.Equal(t, 1, buckets["2023-01-01"].High)
	assert.Equal(t, 0, buckets["2023-01-02"].High)
}

func TestDateBucketsWestOfUTCSeedsRequestedDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Local midnights west of UTC must not slide the window back a day.
	since := time.Date(2023, 1, 1, 0, 0, 0, 0, loc)
	until := time.Date(2023, 1, 2, 0, 0, 0, 0, loc)

	buckets := DateBuckets(since, until, loc)

	require.Len(t, buckets, 2)
	assert.Contains(t, buckets, "2023-01-01")
	assert.Contains(t, buckets, "2023-01-02")
	assert.NotContains(t, buckets, "2022-12-31")
}

func TestCountIgnoresDaysOutsideRange(t *testing.T) {
	buckets := DateBuckets(utcDate(2023, 1, 1, 0, 0), utcDate(2023, 1, 2, 0, 0), time.UTC)

	Count(buckets, utcDate(2023, 1, 5, 12, 0), types.UrgencyHigh, time.UTC)

	for _, bucket := range buckets {
		assert.Equal(t, 0, bucket.High)
		assert.Equal(t, 0, bucket.Low)
	}
}

func TestDateBucketsInTargetZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2023-01-01T20:00Z is already 2023-01-02 in Tokyo
	buckets := DateBuckets(utcDate(2023, 1, 1, 20, 0), utcDate(2023, 1, 1, 20, 0), loc)

	require.Len(t, buckets, 1)
	assert.Contains(t, buckets, "2023-01-02")
}
