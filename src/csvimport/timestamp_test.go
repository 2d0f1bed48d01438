package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "2024-01-15 13:45:30", "2024-01-15 13:45:30"},
		{"iso with zone", "2024-01-15T13:45:30.000Z", "2024-01-15 13:45:30"},
		{"iso without zone", "2024-01-15T13:45:30", "2024-01-15 13:45:30"},
		{"iso with offset", "2024-01-15T13:45:30+05:30", "2024-01-15 13:45:30"},
		{"day first slash", "15/01/2024 13:45:30", "2024-01-15 13:45:30"},
		{"month first slash disambiguated by day", "01/15/2024 13:45:30", "2024-01-15 13:45:30"},
		{"slash without seconds", "15/01/2024 9:30", "2024-01-15 09:30:00"},
		{"dash is month first", "03-05-2024 09:30:00", "2024-03-05 09:30:00"},
		{"dash without seconds", "12-25-2024 9:30", "2024-12-25 09:30:00"},
		{"no seconds", "2024-01-15 9:30", "2024-01-15 09:30:00"},
		{"twelve hour pm", "01/15/2024 01:45:30 PM", "2024-01-15 13:45:30"},
		{"twelve hour am", "2024-01-15 08:30:00 AM", "2024-01-15 08:30:00"},
		{"twelve hour noon", "2024-01-15 12:15 PM", "2024-01-15 12:15:00"},
		{"twelve hour midnight", "2024-01-15 12:15 AM", "2024-01-15 00:15:00"},
		{"date only fallback", "2024-01-15", "2024-01-15 00:00:00"},
		{"slash date only fallback", "2024/01/15", "2024-01-15 00:00:00"},
		{"rfc3339 preserves wall clock", "2024-06-01T09:00:00+02:00", "2024-06-01 09:00:00"},
		{"surrounding whitespace", "  2024-01-15 13:45:30  ", "2024-01-15 13:45:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatTimestamp(tt.in)
			assert.True(t, ok, "expected %q to normalize", tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTimestampAmbiguousDashStaysMonthFirst(t *testing.T) {
	// 05-03 reads as May 3rd, never March 5th; day-first dash exports are
	// known to misparse this shape.
	got, ok := FormatTimestamp("05-03-2024 10:00:00")
	assert.True(t, ok)
	assert.Equal(t, "2024-05-03 10:00:00", got)
}

func TestFormatTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "99/99/9999 10:00:00", "13:45:30"} {
		got, ok := FormatTimestamp(in)
		assert.False(t, ok, "expected %q to be rejected, got %q", in, got)
	}
}
