package slots_test

import (
	"testing"
	"time"

	"github.com/caresquare/care-directory-backend/internal/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "4 July", slots.NormalizeDate("4 july"))
	assert.Equal(t, "15 June", slots.NormalizeDate("15 june"))
	assert.Equal(t, "31 December", slots.NormalizeDate("31 December"))
	assert.Equal(t, "4 JUly", slots.NormalizeDate("4 jUly"))
	assert.Equal(t, "", slots.NormalizeDate("   "))
}

func TestParseDate_AppliesReferenceYear(t *testing.T) {
	parsed, err := slots.ParseDate("4 July", 2026, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseDate_CaseInsensitiveMonth(t *testing.T) {
	lower, err := slots.ParseDate("4 july", 2026, time.UTC)
	require.NoError(t, err)

	upper, err := slots.ParseDate("4 July", 2026, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "soonish", "32 January", "July", "4 Smarch"} {
		_, err := slots.ParseDate(input, 2026, time.UTC)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatDate_RoundTrip(t *testing.T) {
	cases := []string{"1 January", "4 July", "15 June", "31 December", "9 november"}

	for _, input := range cases {
		parsed, err := slots.ParseDate(input, 2026, time.UTC)
		require.NoError(t, err)

		formatted := slots.FormatDate(parsed)

		again, err := slots.ParseDate(formatted, 2026, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, parsed, again)
		assert.Equal(t, formatted, slots.FormatDate(again))
	}
}

func TestClassify(t *testing.T) {
	// Fixed "now": 10 June 2026, mid-morning.
	now := time.Date(2026, time.June, 10, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, slots.DatePast, slots.Classify("9 June", now))
	assert.Equal(t, slots.DateToday, slots.Classify("10 June", now))
	assert.Equal(t, slots.DateFuture, slots.Classify("11 June", now))
	assert.Equal(t, slots.DateFuture, slots.Classify("31 December", now))
	assert.Equal(t, slots.DatePast, slots.Classify("1 January", now))
	assert.Equal(t, slots.DateInvalid, slots.Classify("whenever", now))
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2026, time.June, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC), slots.StartOfDay(now))
}
