package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDates(t *testing.T) {
	// Fixed clock so year rolling is deterministic.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		text         string
		wantCheckin  string
		wantCheckout string
		ok           bool
	}{
		{"slash range", "from 6/15 - 6/20", "2026-06-15", "2026-06-20", true},
		{"slash range no spaces", "6/15-6/20 works for us", "2026-06-15", "2026-06-20", true},
		{"month day range", "June 15-20 please", "2026-06-15", "2026-06-20", true},
		{"day month range", "15 June - 20 June", "2026-06-15", "2026-06-20", true},
		{"day month across months", "28 June - 2 July", "2026-06-28", "2026-07-02", true},
		{"dash range with to", "06-15 to 06-20", "2026-06-15", "2026-06-20", true},
		{"checkin only gets default stay", "check in 6/15", "2026-06-15", "2026-06-18", true},
		{"checkout only backfills checkin", "checking out on 6/20", "2026-06-17", "2026-06-20", true},
		{"arrival phrase", "arriving 7/1", "2026-07-01", "2026-07-04", true},
		{"past dates roll to next year", "1/5 - 1/10", "2027-01-05", "2027-01-10", true},
		{"inverted range repaired", "6/20 - 6/15", "2026-06-20", "2026-06-23", true},
		{"invalid day rejected", "we land 2/30", "", "", false},
		{"no dates", "a loft in Berlin for 2", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, ok := matchDates(tt.text, now)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantCheckin, in)
			assert.Equal(t, tt.wantCheckout, out)
		})
	}
}

func TestMatchDatesCheckoutAlwaysAfterCheckin(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	texts := []string{
		"6/15 - 6/20", "6/20 - 6/15", "check in 12/31", "June 10-10",
	}
	for _, text := range texts {
		in, out, ok := matchDates(text, now)
		require.True(t, ok, text)
		checkin, err := time.Parse(dateLayout, in)
		require.NoError(t, err)
		checkout, err := time.Parse(dateLayout, out)
		require.NoError(t, err)
		assert.True(t, checkout.After(checkin), "%s: %s should be after %s", text, out, in)
	}
}
