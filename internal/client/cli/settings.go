package cli

import (
	"context"
	"log"
	"time"
)

// settings shows or updates local preferences. These never sync.
//
//	settings
//	settings reminder on [HH:mm] | off
//	settings theme light|dark|system
func (a *App) settings(ctx context.Context, args []string) {
	s, err := a.store.Settings(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	if len(args) == 0 {
		state := "off"
		if s.ReminderEnabled {
			state = "on at " + s.ReminderTime
		}
		printlnFn("Reminder:", state)
		printlnFn("Theme:", s.Theme)
		return
	}

	switch args[0] {
	case "reminder":
		if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
			printlnFn("Usage: settings reminder on [HH:mm] | off")
			return
		}
		s.ReminderEnabled = args[1] == "on"
		if s.ReminderEnabled && len(args) > 2 {
			if _, perr := time.Parse("15:04", args[2]); perr != nil {
				printlnFn("Invalid time:", args[2])
				return
			}
			s.ReminderTime = args[2]
		}
	case "theme":
		if len(args) < 2 || (args[1] != "light" && args[1] != "dark" && args[1] != "system") {
			printlnFn("Usage: settings theme light|dark|system")
			return
		}
		s.Theme = args[1]
	default:
		printlnFn("Usage: settings [reminder|theme] ...")
		return
	}

	if err := a.store.SaveSettings(ctx, s); err != nil {
		log.Println(err.Error())
		return
	}
	printlnFn("Settings saved.")
}
