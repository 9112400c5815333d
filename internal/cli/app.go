package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/bookmarksync/internal/annotations"
	"github.com/dmitrijs2005/bookmarksync/internal/config"
	"github.com/dmitrijs2005/bookmarksync/internal/logging"
	"github.com/dmitrijs2005/bookmarksync/internal/models"
	"github.com/dmitrijs2005/bookmarksync/internal/repositories"
	"github.com/dmitrijs2005/bookmarksync/internal/services"

	_ "modernc.org/sqlite"
)

// App wires the CLI together: local database, annotation client, sync
// service and the interactive loop state.
type App struct {
	config  *config.Config
	service *services.SyncService
	repos   *repositories.Repositories
	logger  logging.Logger
	reader  *bufio.Reader

	profile *models.Profile
	current models.AccountID

	eventsStop func()
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	repos, err := repositories.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	client := annotations.NewRetryClient(
		annotations.NewHTTPClient(c.RequestTimeout, logger),
		c.RetryAttempts, c.RetryDelay,
	)

	service := services.NewSyncService(repos.Bookmarks, client, logger)

	return &App{
		config:  c,
		service: service,
		repos:   repos,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.close()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) close() {
	if a.eventsStop != nil {
		a.eventsStop()
	}
	a.service.Close()
	_ = a.repos.DB.Close()
}

func (a *App) hasProfile() bool {
	return a.profile != nil
}

// currentAccount returns the account commands operate on. With one account
// in the profile no explicit selection is needed.
func (a *App) currentAccount() (models.Account, bool) {
	if a.profile == nil {
		return models.Account{}, false
	}
	if a.current != "" {
		return a.profile.Account(a.current)
	}
	if len(a.profile.Accounts) == 1 {
		return a.profile.Accounts[0], true
	}
	return models.Account{}, false
}

// updateAccount replaces the account in the in-memory profile.
func (a *App) updateAccount(account models.Account) {
	for i := range a.profile.Accounts {
		if a.profile.Accounts[i].ID == account.ID {
			a.profile.Accounts[i] = account
			return
		}
	}
	a.profile.Accounts = append(a.profile.Accounts, account)
}
