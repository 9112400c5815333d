package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/bookmarksync/internal/services"
)

// Sync toggles server-side syncing for the current account: sync on|off
func (a *App) Sync(ctx context.Context, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Println("Usage: sync on|off")
		return
	}
	account, ok := a.currentAccount()
	if !ok {
		fmt.Println("No account selected, run: accounts use ID")
		return
	}

	setting, err := a.service.SyncEnable(ctx, account.ID, args[0] == "on")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Syncing is", setting)
}

// Events toggles printing of sync lifecycle events: events on|off
func (a *App) Events(ctx context.Context, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Println("Usage: events on|off")
		return
	}

	if args[0] == "off" {
		if a.eventsStop != nil {
			a.eventsStop()
			a.eventsStop = nil
		}
		return
	}

	if a.eventsStop != nil {
		return
	}
	ch, cancel := a.service.Events()
	a.eventsStop = cancel

	go func() {
		for e := range ch {
			switch ev := e.(type) {
			case services.SyncStarted:
				log.Printf("sync started: account=%s", ev.Account)
			case services.SyncFinished:
				log.Printf("sync finished: account=%s", ev.Account)
			case services.BookmarkSaved:
				log.Printf("bookmark saved: account=%s id=%s", ev.Account, ev.Bookmark.ID)
			}
		}
	}()
}
