package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/wh131462/stillalive/internal/client/models"
)

func (a *App) sync(ctx context.Context) {
	res, err := a.manager.Sync(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	printlnFn(fmt.Sprintf("Synced %d records.", res.Synced))
	if len(res.Conflicts) > 0 {
		printlnFn(fmt.Sprintf("%d conflicts need your attention; see 'conflicts'.", len(res.Conflicts)))
	}
}

func (a *App) status(ctx context.Context) {
	st, err := a.manager.Status(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	last := "never"
	if !st.LastSyncAt.IsZero() {
		last = st.LastSyncAt.Format("2006-01-02 15:04:05")
	}
	printlnFn(fmt.Sprintf("State: %s, last sync: %s, pending: %d", st.State, last, st.PendingCount))
}

func (a *App) conflicts(_ context.Context) {
	list := a.manager.Conflicts()
	if len(list) == 0 {
		printlnFn("No unresolved conflicts.")
		return
	}
	for _, c := range list {
		printlnFn(fmt.Sprintf("%s (%s): local and server copies differ", c.ID, c.Collection))
	}
	printlnFn("Use: resolve <id|all> <local|server>")
}

func (a *App) resolve(ctx context.Context, args []string) {
	if len(args) != 2 {
		printlnFn("Usage: resolve <id|all> <local|server>")
		return
	}

	var resolution models.Resolution
	switch args[1] {
	case "local":
		resolution = models.ResolutionKeepLocal
	case "server":
		resolution = models.ResolutionKeepServer
	default:
		printlnFn("Usage: resolve <id|all> <local|server>")
		return
	}

	var err error
	if args[0] == "all" {
		err = a.manager.ResolveAllConflicts(ctx, resolution)
	} else {
		err = a.manager.ResolveConflict(ctx, args[0], resolution)
	}
	if err != nil {
		log.Println(err.Error())
		return
	}
	printlnFn("Resolved.")
}
