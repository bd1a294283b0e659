package cli

import (
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

func (a *App) getStatus() string {
	return string(a.manager.State())
}

// Root runs the read-eval-print loop until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to StillAlive CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "sa (%s)> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Check-ins: (c)heckin, today, list [YYYY-MM | from to], delcheckin <date>, stats")
			printlnFn("Contacts:  contacts, addcontact, delcontact <id>, birthdays <MM-DD>")
			printlnFn("Sync:      sync, status, conflicts, resolve <id|all> <local|server>")
			printlnFn("Other:     settings, exit")

		case "c", "checkin":
			a.checkin(ctx)
		case "today":
			a.today(ctx)
		case "list":
			a.list(ctx, args)
		case "delcheckin":
			a.delCheckin(ctx, args)
		case "stats":
			a.stats(ctx)

		case "contacts":
			a.contacts(ctx)
		case "addcontact":
			a.addContact(ctx)
		case "delcontact":
			a.delContact(ctx, args)
		case "birthdays":
			a.birthdays(ctx, args)

		case "sync":
			a.sync(ctx)
		case "status":
			a.status(ctx)
		case "conflicts":
			a.conflicts(ctx)
		case "resolve":
			a.resolve(ctx, args)

		case "settings":
			a.settings(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
