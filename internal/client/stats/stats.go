// Package stats computes derived counters over the local check-in collection.
// Everything here is a pure function: callers recompute after a mutation or a
// sync rather than maintaining the numbers incrementally. Per-device history
// is a few thousand records at most, so the full recompute stays cheap.
package stats

import (
	"sort"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
)

// Stats are the aggregate check-in counters shown on the profile screen.
type Stats struct {
	// TotalDays counts all check-in records.
	TotalDays int
	// TotalRecords counts records carrying non-empty content.
	TotalRecords int
	// Streak counts consecutive checked days anchored at today; when today is
	// still open the count starts from yesterday instead.
	Streak int
	// MaxStreak is the longest run of adjacent days across all history.
	MaxStreak int
}

// Calculate computes all counters for the given records, evaluated as of the
// calendar day of today.
func Calculate(records []models.Checkin, today time.Time) Stats {
	s := Stats{TotalDays: len(records)}

	days := make(map[string]bool, len(records))
	var sorted []time.Time
	for i := range records {
		if records[i].Content != "" {
			s.TotalRecords++
		}
		d, err := time.Parse(models.DateLayout, records[i].Date)
		if err != nil {
			continue // unparseable dates never participate in streaks
		}
		key := d.Format(models.DateLayout)
		if !days[key] {
			days[key] = true
			sorted = append(sorted, d)
		}
	}

	s.Streak = currentStreak(days, today)
	s.MaxStreak = maxStreak(sorted)
	return s
}

func currentStreak(days map[string]bool, today time.Time) int {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !days[day.Format(models.DateLayout)] {
		// today is still open; start counting from yesterday
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format(models.DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func maxStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
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
