package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := a.identity.Email
	if s == "" {
		s = a.identity.UserID
	}
	return fmt.Sprintf("(%s %s)", s, a.session.State())
}

// Root evaluates the initial session state and runs the interactive loop.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to PhishGuard CLI (type 'help' for commands)")

	if err := a.session.Init(ctx); err != nil {
		a.log.Warn(ctx, "session init failed", "error", err)
	}

	go a.StartLockoutWatcher(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
