package cli

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/shared"
)

// checkin records (or updates) a check-in. An empty date means today; a past
// date produces a makeup check-in.
func (a *App) checkin(ctx context.Context) {
	today := a.now().Format(models.DateLayout)

	date, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if date == "" {
		date = today
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		printlnFn("Invalid date:", date)
		return
	}

	content, err := GetMultiline(a.reader, "How was the day?", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}

	mood, err := GetSimpleText(a.reader, "Mood (happy/calm/tired/sad/anxious/excited, optional)", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}

	rec, err := a.store.SaveCheckin(ctx, &models.Checkin{
		Date:     date,
		Content:  content,
		Mood:     models.Mood(mood),
		IsMakeup: date != today,
	})
	if err != nil {
		log.Println(err.Error())
		return
	}

	if rec.IsMakeup {
		printlnFn("Makeup check-in saved for", rec.Date)
	} else {
		printlnFn("Checked in for", rec.Date)
	}
}

// delCheckin removes the record for one day from this device. Removal is
// local only; the authority's copy is untouched.
func (a *App) delCheckin(ctx context.Context, args []string) {
	if len(args) < 1 {
		printlnFn("Usage: delcheckin <YYYY-MM-DD>")
		return
	}
	date := args[0]
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		printlnFn("Invalid date:", date)
		return
	}

	rec, err := a.store.GetCheckinByDate(ctx, date)
	if errors.Is(err, shared.ErrNotFound) {
		printlnFn("No check-in on", date)
		return
	}
	if err != nil {
		log.Println(err.Error())
		return
	}

	if err := a.store.DeleteCheckin(ctx, rec.ID); err != nil {
		log.Println(err.Error())
		return
	}
	printlnFn("Deleted check-in for", date)
}

// today shows whether the current day is already checked in.
func (a *App) today(ctx context.Context) {
	date := a.now().Format(models.DateLayout)
	rec, err := a.store.GetCheckinByDate(ctx, date)
	if errors.Is(err, shared.ErrNotFound) {
		printlnFn("Not checked in yet today.")
		return
	}
	if err != nil {
		log.Println(err.Error())
		return
	}
	printCheckin(rec)
}
