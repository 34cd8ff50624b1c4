package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDate(value)
	require.NoError(t, err)
	return d
}

func TestClosingPeriod(t *testing.T) {
	cases := []struct {
		closing string
		start   string
	}{
		{closing: "2026-01-15", start: "2025-12-21"},
		{closing: "2026-01-25", start: "2026-01-21"},
		{closing: "2026-01-21", start: "2026-01-21"},
		{closing: "2026-01-20", start: "2025-12-21"},
		{closing: "2026-03-01", start: "2026-02-21"},
	}
	for _, tc := range cases {
		t.Run(tc.closing, func(t *testing.T) {
			p := ClosingPeriod(date(t, tc.closing), 21)
			assert.Equal(t, tc.start, p.Start.Format(DateLayout))
			assert.Equal(t, tc.closing, p.End.Format(DateLayout))
		})
	}
}

func TestReceiptDate(t *testing.T) {
	p, err := ParsePeriod("2025-12-21", "2026-01-20")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-25", p.ReceiptDate(25).Format(DateLayout))
	assert.Equal(t, "2025-12-21:2026-01-20", p.String())
}

func TestParsePeriod_Rejects(t *testing.T) {
	_, err := ParsePeriod("2026-01-20", "2025-12-21")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = ParsePeriod("2026/01/20", "2026-01-21")
	assert.ErrorIs(t, err, ErrInvalidDate)

	p, err := ParsePeriod("2026-01-20", "2026-01-20")
	require.NoError(t, err)
	assert.True(t, p.Start.Equal(p.End))
}

func TestLastClosingDate(t *testing.T) {
	cases := []struct {
		today    string
		startDay int
		want     string
	}{
		{"2026-01-21", 21, "2026-01-20"},
		{"2026-01-20", 21, "2025-12-20"},
		{"2026-01-05", 21, "2025-12-20"},
		{"2026-03-01", 1, "2026-02-28"},
		{"2024-03-02", 1, "2024-02-29"},
	}
	for _, tc := range cases {
		got := LastClosingDate(date(t, tc.today), tc.startDay)
		assert.Equal(t, tc.want, got.Format(DateLayout), tc.today)

		period := ClosingPeriod(got, tc.startDay)
		assert.Equal(t, tc.startDay, period.Start.Day())
	}
}
