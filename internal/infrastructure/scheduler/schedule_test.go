package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samara = time.FixedZone("Europe/Samara", 4*60*60)

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("@every 6h")
	require.NoError(t, err)
	assert.Equal(t, "@every 6h0m0s", s.String())

	from := time.Date(2025, 2, 26, 10, 0, 0, 0, samara)
	assert.Equal(t, from.Add(6*time.Hour), s.Next(from))

	s, err = ParseSchedule("0 6 * * 1-6")
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * 1-6", s.String())

	for _, bad := range []string{"@every soon", "@every 10s", "0 6 * *", "61 * * * *", "5-1 * * * *", "*/0 * * * *"} {
		_, err := ParseSchedule(bad)
		assert.Error(t, err, bad)
	}
}

func TestCronExpression_Next(t *testing.T) {
	tests := []struct {
		expr string
		from time.Time
		want time.Time
	}{
		{
			expr: "0 6 * * *",
			from: time.Date(2025, 2, 26, 10, 0, 0, 0, samara),
			want: time.Date(2025, 2, 27, 6, 0, 0, 0, samara),
		},
		{
			expr: "0 6 * * *",
			from: time.Date(2025, 2, 26, 5, 59, 30, 0, samara),
			want: time.Date(2025, 2, 26, 6, 0, 0, 0, samara),
		},
		{
			expr: "*/30 * * * *",
			from: time.Date(2025, 2, 26, 10, 0, 0, 0, samara),
			want: time.Date(2025, 2, 26, 10, 30, 0, 0, samara),
		},
		{
			// Saturday evening: next study day is Monday.
			expr: "0 7 * * 1-5",
			from: time.Date(2025, 3, 1, 20, 0, 0, 0, samara),
			want: time.Date(2025, 3, 3, 7, 0, 0, 0, samara),
		},
		{
			expr: "15,45 8 * * *",
			from: time.Date(2025, 2, 26, 8, 20, 0, 0, samara),
			want: time.Date(2025, 2, 26, 8, 45, 0, 0, samara),
		},
		{
			expr: "0 0 31 2 *",
			from: time.Date(2025, 2, 26, 8, 20, 0, 0, samara),
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ce, err := ParseCronExpression(tt.expr)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ce.Next(tt.from)), "got %s", ce.Next(tt.from))
		})
	}
}

func TestParseField(t *testing.T) {
	got, err := parseField("1-10/3,0", 0, 59)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 7, 10}, got)

	got, err = parseField("50/5", 0, 59)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 55}, got)
}
