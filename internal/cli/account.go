package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// Accounts manages the active profile's accounts.
//
//	accounts              — list accounts and their sync state
//	accounts add          — interactive prompt for a new account
//	accounts login [ID]   — enter credentials
//	accounts remove ID    — drop the account and its bookmarks
//	accounts use ID       — select the account other commands target
func (a *App) Accounts(ctx context.Context, args []string) {
	if !a.hasProfile() {
		fmt.Println("No profile active, run: profile NAME")
		return
	}

	if len(args) == 0 {
		a.listAccounts()
		return
	}

	switch args[0] {
	case "add":
		a.addAccount(ctx)
	case "login":
		a.loginAccount(ctx, args[1:])
	case "remove":
		a.removeAccount(ctx, args[1:])
	case "use":
		a.useAccount(args[1:])
	default:
		fmt.Println("Usage: accounts [add|login [ID]|remove ID|use ID]")
	}
}

func (a *App) listAccounts() {
	if len(a.profile.Accounts) == 0 {
		fmt.Println("No accounts, run: accounts add")
		return
	}

	state := a.service.State()
	for _, acc := range a.profile.Accounts {
		status := "sync off"
		if st, ok := state.Account(acc.ID); ok && st.CanSync() {
			status = "sync on"
		}
		marker := " "
		if acc.ID == a.current {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  (%s)\n", marker, acc.ID, acc.Provider, status)
	}
}

func (a *App) addAccount(ctx context.Context) {
	id, err := GetSimpleText(a.reader, "Account ID", os.Stdout)
	if err != nil || id == "" {
		log.Printf("error: account ID is required")
		return
	}
	provider, err := GetSimpleText(a.reader, "Library name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	annotationsURI, err := GetSimpleText(a.reader, "Annotations URI (empty if unsupported)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	settingsURI, err := GetSimpleText(a.reader, "Patron settings URI (empty if unsupported)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	permitted, err := GetSimpleText(a.reader, "Permit syncing? (y/n)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	account := models.Account{
		ID:             models.AccountID(id),
		Provider:       provider,
		AnnotationsURI: annotationsURI,
		SettingsURI:    settingsURI,
		SyncPermitted:  permitted == "y" || permitted == "yes",
	}

	if err := a.service.AccountCreated(ctx, account); err != nil {
		log.Printf("error: %v", err)
		return
	}

	a.updateAccount(account)
	a.current = account.ID
	fmt.Printf("Account %s added\n", account.ID)
}

func (a *App) loginAccount(ctx context.Context, args []string) {
	account, ok := a.resolveAccount(args)
	if !ok {
		return
	}

	userName, err := GetSimpleText(a.reader, "Barcode or user name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	account.Credentials = models.Credentials{Username: userName, Password: password}

	if err := a.service.AccountLoggedIn(ctx, account); err != nil {
		log.Printf("error: %v", err)
		return
	}

	a.updateAccount(account)
	fmt.Printf("Logged in to %s\n", account.ID)
}

func (a *App) removeAccount(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: accounts remove ID")
		return
	}
	id := models.AccountID(args[0])

	if err := a.service.AccountDeleted(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return
	}

	accounts := a.profile.Accounts[:0]
	for _, acc := range a.profile.Accounts {
		if acc.ID != id {
			accounts = append(accounts, acc)
		}
	}
	a.profile.Accounts = accounts
	if a.current == id {
		a.current = ""
	}
	fmt.Printf("Account %s removed\n", id)
}

func (a *App) useAccount(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: accounts use ID")
		return
	}
	id := models.AccountID(args[0])
	if _, ok := a.profile.Account(id); !ok {
		fmt.Println("Unknown account:", args[0])
		return
	}
	a.current = id
}

// resolveAccount picks the account named by args, or the current one.
func (a *App) resolveAccount(args []string) (models.Account, bool) {
	if len(args) == 1 {
		account, ok := a.profile.Account(models.AccountID(args[0]))
		if !ok {
			fmt.Println("Unknown account:", args[0])
		}
		return account, ok
	}
	account, ok := a.currentAccount()
	if !ok {
		fmt.Println("No account selected, run: accounts use ID")
	}
	return account, ok
}
