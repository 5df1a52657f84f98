package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/phishguard/internal/client/auth"
	"github.com/dmitrijs2005/phishguard/internal/client/client"
	"github.com/dmitrijs2005/phishguard/internal/client/config"
	"github.com/dmitrijs2005/phishguard/internal/client/pubsub"
	"github.com/dmitrijs2005/phishguard/internal/client/services"
	"github.com/dmitrijs2005/phishguard/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the session, the lockout tracker and the backend client behind
// the interactive console.
type App struct {
	config    *config.Config
	apiClient client.Client
	session   *services.Session
	tracker   *services.LockoutTracker
	identity  *auth.Identity
	log       logging.Logger
	reader    *bufio.Reader
}

// NewApp builds a ready-to-run App from a configuration and a bearer token.
// The token only establishes who the user is; the passphrase is collected
// interactively later.
func NewApp(c *config.Config, token string, log logging.Logger) (*App, error) {
	identity, err := auth.ParseIdentity(token)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if identity.Expired(time.Now()) {
		return nil, fmt.Errorf("access token for %s is expired", identity.Email)
	}

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.APIBaseURL, token)

	session := services.NewSession(apiClient, db, log, identity.UserID, c.KDFIterations)
	tracker := services.NewLockoutTracker(apiClient, db, pubsub.NewChannelBus(), log, identity.UserID)
	tracker.SetIntervals(c.LockoutRefreshThrottle, c.LockoutCacheTTL)

	return &App{
		config:    c,
		apiClient: apiClient,
		session:   session,
		tracker:   tracker,
		identity:  identity,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.apiClient.Close()
	a.Root(ctx)
}

func (a *App) isUnlocked() bool {
	return a.session.State() == services.StateUnlocked
}

// StartLockoutWatcher prints a notice whenever the lockout cache is
// rewritten by any component on this device. It returns when ctx is
// cancelled or the subscription is closed.
func (a *App) StartLockoutWatcher(ctx context.Context) {
	ch, cancel := a.tracker.Subscribe()
	defer cancel()

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			status, err := a.tracker.Status(ctx)
			if err != nil {
				continue
			}
			if status.IsLocked {
				fmt.Println(color.YellowString("unlock attempts are rate limited, try again in %ds", status.RemainingSeconds))
			}
		case <-ctx.Done():
			return
		}
	}
}
