package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/client/stats"
)

func printCheckin(c *models.Checkin) {
	line := c.Date
	if c.Mood != "" {
		line += " [" + string(c.Mood) + "]"
	}
	if c.IsMakeup {
		line += " (makeup)"
	}
	if c.Content != "" {
		line += " " + c.Content
	}
	printlnFn(line)
}

// list prints check-ins: all of them, one month ("YYYY-MM"), or a date range
// ("YYYY-MM-DD YYYY-MM-DD").
func (a *App) list(ctx context.Context, args []string) {
	var (
		records []models.Checkin
		err     error
	)
	switch {
	case len(args) >= 2:
		if _, perr := time.Parse(models.DateLayout, args[0]); perr != nil {
			printlnFn("Usage: list [YYYY-MM | YYYY-MM-DD YYYY-MM-DD]")
			return
		}
		if _, perr := time.Parse(models.DateLayout, args[1]); perr != nil {
			printlnFn("Usage: list [YYYY-MM | YYYY-MM-DD YYYY-MM-DD]")
			return
		}
		records, err = a.store.ListCheckinsByDateRange(ctx, args[0], args[1])
	case len(args) == 1:
		month, perr := time.Parse("2006-01", args[0])
		if perr != nil {
			printlnFn("Usage: list [YYYY-MM | YYYY-MM-DD YYYY-MM-DD]")
			return
		}
		records, err = a.store.ListCheckinsByMonth(ctx, month.Year(), month.Month())
	default:
		records, err = a.store.ListCheckins(ctx)
	}
	if err != nil {
		log.Println(err.Error())
		return
	}

	if len(records) == 0 {
		printlnFn("No check-ins yet.")
		return
	}
	for i := range records {
		printCheckin(&records[i])
	}
}

// stats prints derived counters over the full check-in history.
func (a *App) stats(ctx context.Context) {
	records, err := a.store.ListCheckins(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	s := stats.Calculate(records, a.now())
	printlnFn(fmt.Sprintf("Days checked in: %d (records with notes: %d)", s.TotalDays, s.TotalRecords))
	printlnFn(fmt.Sprintf("Current streak: %d, best streak: %d", s.Streak, s.MaxStreak))
}
