package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRecordFloorsAtZero(t *testing.T) {
	h := NewHistory(Goals{})
	d := day("2024-03-01")

	h.Record(d, 120)
	h.Record(d, -30)
	assert.Equal(t, 90, h.Get(d).WordsWritten)

	h.Record(d, -500)
	assert.Equal(t, 0, h.Get(d).WordsWritten)

	h.RecordMinutes(d, 25)
	h.RecordMinutes(d, -5)
	assert.Equal(t, 25, h.Get(d).MinutesActive)
	assert.Len(t, h.Entries, 1, "one entry per date")
}

func TestGoalMet(t *testing.T) {
	d := day("2024-03-01")

	h := NewHistory(Goals{DailyWords: 500})
	h.Record(d, 499)
	assert.False(t, h.GoalMet(d))
	h.Record(d, 1)
	assert.True(t, h.GoalMet(d))

	assert.False(t, NewHistory(Goals{}).GoalMet(d))
}

func TestStreaks(t *testing.T) {
	h := NewHistory(Goals{})
	for _, d := range []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-02", "2024-03-03"} {
		h.Record(day(d), 10)
	}
	// A zero day does not count.
	h.RecordMinutes(day("2024-03-01"), 30)

	tests := []struct {
		today string
		want  int
	}{
		{"2024-03-03", 2},
		{"2024-03-04", 2}, // nothing written yet today
		{"2024-03-05", 0},
		{"2024-02-29", 3},
	}
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			assert.Equal(t, tt.want, h.CurrentStreak(day(tt.today)))
		})
	}

	assert.Equal(t, 3, h.LongestStreak())
	assert.Equal(t, 0, NewHistory(Goals{}).LongestStreak())
}

func TestRecentAndTotals(t *testing.T) {
	h := NewHistory(Goals{})
	h.Record(day("2024-03-01"), 100)
	h.Record(day("2024-03-03"), 50)
	h.RecordMinutes(day("2024-03-03"), 20)

	recent := h.Recent(day("2024-03-03"), 3)
	require.Len(t, recent, 3)
	assert.Equal(t, "2024-03-01", recent[0].Date)
	assert.Equal(t, 0, recent[1].WordsWritten)
	assert.Equal(t, 50, recent[2].WordsWritten)

	words, minutes := h.Totals()
	assert.Equal(t, 150, words)
	assert.Equal(t, 20, minutes)
}

func TestEncodeDecode(t *testing.T) {
	h := NewHistory(Goals{DailyWords: 300})
	h.Record(day("2024-03-01"), 42)

	data, err := h.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	got, err = Decode([]byte(`{"entries":{"yesterday":{"wordsWritten":3},"2024-01-01":{"wordsWritten":4}}}`))
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1)
	assert.Equal(t, "2024-01-01", got.Entries["2024-01-01"].Date)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}
