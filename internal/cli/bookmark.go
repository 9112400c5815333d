package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// deviceName identifies this client in outgoing bookmarks.
func deviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "bookmarksync-cli"
	}
	return host
}

func (a *App) newBookmark(kind models.BookmarkKind, work, href string, progression float64) models.Bookmark {
	return models.Bookmark{
		ID:          models.NewBookmarkID(),
		Work:        models.WorkID(work),
		Kind:        kind,
		ChapterHref: href,
		Progression: progression,
		Time:        time.Now().UTC(),
		Device:      deviceName(),
	}
}

func (a *App) createBookmark(ctx context.Context, b models.Bookmark) {
	account, ok := a.currentAccount()
	if !ok {
		fmt.Println("No account selected, run: accounts use ID")
		return
	}
	if err := a.service.BookmarkCreate(ctx, account.ID, b); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Bookmark %s saved\n", b.ID)
}

// Add creates an explicit bookmark: add WORK HREF PROGRESS
func (a *App) Add(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Println("Usage: add WORK HREF PROGRESS")
		return
	}
	progression, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Println("PROGRESS must be a number between 0 and 1")
		return
	}
	a.createBookmark(ctx, a.newBookmark(models.KindExplicit, args[0], args[1], progression))
}

// AddHighlight creates a highlight: addhl WORK HREF TEXT...
func (a *App) AddHighlight(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: addhl WORK HREF TEXT...")
		return
	}
	b := a.newBookmark(models.KindHighlight, args[0], args[1], 0)
	b.SelectedText = strings.Join(args[2:], " ")
	a.createBookmark(ctx, b)
}

// LastRead records the reading position: lastread WORK HREF PROGRESS
func (a *App) LastRead(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Println("Usage: lastread WORK HREF PROGRESS")
		return
	}
	progression, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Println("PROGRESS must be a number between 0 and 1")
		return
	}
	a.createBookmark(ctx, a.newBookmark(models.KindLastReadLocation, args[0], args[1], progression))
}

// List prints a book's bookmarks: list WORK
func (a *App) List(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: list WORK")
		return
	}
	account, ok := a.currentAccount()
	if !ok {
		fmt.Println("No account selected, run: accounts use ID")
		return
	}

	list, err := a.service.BookmarkLoad(ctx, account.ID, models.WorkID(args[0]))
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No bookmarks")
		return
	}
	for _, b := range list {
		line := fmt.Sprintf("%s  %-18s %s @ %.2f", b.ID, b.Kind, b.ChapterHref, b.Progression)
		if b.SelectedText != "" {
			line += fmt.Sprintf("  %q", b.SelectedText)
		}
		fmt.Println(line)
	}
}

// Delete removes a bookmark: delete ID
func (a *App) Delete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: delete ID")
		return
	}
	account, ok := a.currentAccount()
	if !ok {
		fmt.Println("No account selected, run: accounts use ID")
		return
	}

	b := models.Bookmark{ID: models.BookmarkID(args[0])}
	if err := a.service.BookmarkDelete(ctx, account.ID, b); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Bookmark %s deleted\n", b.ID)
}
