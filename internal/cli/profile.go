package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

func (a *App) status() string {
	if a.profile == nil {
		return ""
	}
	s := a.profile.Name
	if acc, ok := a.currentAccount(); ok {
		s = s + "/" + string(acc.ID)
	}
	return fmt.Sprintf(" (%s)", s)
}

// Profile activates a profile. Bookmarks of the previous profile's accounts
// stay in local storage; the sync state is rebuilt for the new one.
func (a *App) Profile(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: profile NAME")
		return
	}

	profile := models.Profile{ID: args[0], Name: args[0]}
	if err := a.service.ProfileChanged(ctx, profile); err != nil {
		log.Printf("error: %v", err)
		return
	}

	a.profile = &profile
	a.current = ""
	fmt.Printf("Profile %q active\n", profile.Name)
}
