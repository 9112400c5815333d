package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasProfile() bool
	Profile(ctx context.Context, args []string)
	Accounts(ctx context.Context, args []string)
	Add(ctx context.Context, args []string)
	AddHighlight(ctx context.Context, args []string)
	LastRead(ctx context.Context, args []string)
	List(ctx context.Context, args []string)
	Delete(ctx context.Context, args []string)
	Sync(ctx context.Context, args []string)
	Events(ctx context.Context, args []string)
}

// runREPL starts a simple read-eval-print loop for the bookmark CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	No profile active:
//	  - help           — show available commands
//	  - profile NAME   — activate a profile
//	  - exit | quit    — leave the program
//
//	Profile active:
//	  - help                      — show available commands
//	  - profile NAME              — switch profile
//	  - accounts [add|login|remove|use ...] — manage accounts
//	  - add WORK HREF PROGRESS    — create an explicit bookmark
//	  - addhl WORK HREF TEXT...   — create a highlight
//	  - lastread WORK HREF PROGRESS — record the reading position
//	  - list WORK                 — list a book's bookmarks
//	  - delete ID                 — delete a bookmark
//	  - sync on|off               — toggle server-side syncing
//	  - events on|off             — print sync lifecycle events
//	  - exit | quit               — leave the program
//
// Command handlers report their own errors; the loop stays resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("bookmarks%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.hasProfile() {
				printlnFn("Available commands: profile, accounts, add, addhl, lastread, (l)ist, delete, sync on|off, events on|off, exit")
			} else {
				printlnFn("Available commands: profile NAME, exit")
			}

		case "profile":
			a.Profile(ctx, args)

		case "accounts":
			a.Accounts(ctx, args)

		case "add":
			a.Add(ctx, args)

		case "addhl":
			a.AddHighlight(ctx, args)

		case "lastread":
			a.LastRead(ctx, args)

		case "l", "list":
			a.List(ctx, args)

		case "delete":
			a.Delete(ctx, args)

		case "sync":
			a.Sync(ctx, args)

		case "events":
			a.Events(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
