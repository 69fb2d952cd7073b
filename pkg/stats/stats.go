// Package stats keeps the daily writing history: words written and minutes
// active per calendar day, with streaks and a daily goal.
package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the key format of the history.
const DateLayout = "2006-01-02"

// Entry is the record of one day.
type Entry struct {
	Date          string `json:"date" yaml:"date"`
	WordsWritten  int    `json:"wordsWritten" yaml:"words_written"`
	MinutesActive int    `json:"minutesActive" yaml:"minutes_active"`
}

// Goals are the user's writing targets. Zero disables a goal.
type Goals struct {
	DailyWords int `json:"dailyWords" yaml:"daily_words" mapstructure:"daily_words"`
}

// History maps dates to entries. Each date appears at most once.
type History struct {
	Entries map[string]*Entry `json:"entries"`
	Goals   Goals             `json:"goals"`
}

// NewHistory returns an empty history with goals.
func NewHistory(goals Goals) *History {
	return &History{Entries: make(map[string]*Entry), Goals: goals}
}

// Key formats t as a history key in t's location.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

func (h *History) entry(date string) *Entry {
	if h.Entries == nil {
		h.Entries = make(map[string]*Entry)
	}
	e, ok := h.Entries[date]
	if !ok {
		e = &Entry{Date: date}
		h.Entries[date] = e
	}
	return e
}

// Record adds wordsDelta to the words written on date. Deleting text can
// lower the count but never below zero.
func (h *History) Record(date time.Time, wordsDelta int) {
	if wordsDelta == 0 {
		return
	}
	e := h.entry(Key(date))
	e.WordsWritten += wordsDelta
	if e.WordsWritten < 0 {
		e.WordsWritten = 0
	}
}

// RecordMinutes adds active minutes to date.
func (h *History) RecordMinutes(date time.Time, minutes int) {
	if minutes <= 0 {
		return
	}
	h.entry(Key(date)).MinutesActive += minutes
}

// Get returns the entry for date, or a zero entry.
func (h *History) Get(date time.Time) Entry {
	if e, ok := h.Entries[Key(date)]; ok {
		return *e
	}
	return Entry{Date: Key(date)}
}

// GoalMet reports whether the daily word goal was reached on date. Without
// a goal it is never met.
func (h *History) GoalMet(date time.Time) bool {
	if h.Goals.DailyWords <= 0 {
		return false
	}
	return h.Get(date).WordsWritten >= h.Goals.DailyWords
}

func (h *History) active(date string) bool {
	e, ok := h.Entries[date]
	return ok && e.WordsWritten > 0
}

// CurrentStreak counts consecutive days with words written ending at today.
// A day without writing yet does not break a streak that ran until yesterday.
func (h *History) CurrentStreak(today time.Time) int {
	day := today
	if !h.active(Key(day)) {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for h.active(Key(day)) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive writing days.
func (h *History) LongestStreak() int {
	var days []time.Time
	for key := range h.Entries {
		if !h.active(key) {
			continue
		}
		d, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Totals sums every entry.
func (h *History) Totals() (words, minutes int) {
	for _, e := range h.Entries {
		words += e.WordsWritten
		minutes += e.MinutesActive
	}
	return words, minutes
}

// Recent returns the entries of the last n days ending at today, oldest
// first, including days without an entry.
func (h *History) Recent(today time.Time, n int) []Entry {
	out := make([]Entry, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, h.Get(today.AddDate(0, 0, -i)))
	}
	return out
}

// Encode serializes the history for its storage slot.
func (h *History) Encode() ([]byte, error) {
	return json.Marshal(h)
}

// Decode parses a stored history. Entries whose key is not a date are
// dropped.
func Decode(data []byte) (*History, error) {
	h := NewHistory(Goals{})
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	if h.Entries == nil {
		h.Entries = make(map[string]*Entry)
	}
	for key, e := range h.Entries {
		if _, err := time.Parse(DateLayout, key); err != nil || e == nil {
			delete(h.Entries, key)
			continue
		}
		e.Date = key
	}
	return h, nil
}
