package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/dmitrijs2005/phishguard/internal/client/services"
	"github.com/dmitrijs2005/phishguard/internal/common"
)

// Status prints the session state and, when relevant, the lockout countdown.
func (a *App) Status(ctx context.Context) error {
	state := a.session.State()

	switch state {
	case services.StateUnlocked:
		fmt.Println(color.GreenString("✓") + " encryption unlocked")
	case services.StateLocked:
		fmt.Println(color.YellowString("●") + " encryption locked, use 'unlock'")
	case services.StateNotSetup:
		fmt.Println(color.CyanString("○") + " encryption not set up, use 'setup'")
	case services.StateError:
		fmt.Println(color.RedString("✗") + " encrypted records exist but no salt is known; contact support")
	default:
		fmt.Println(color.YellowString("?") + " encryption state unknown, backend unreachable")
	}

	status, err := a.tracker.Status(ctx)
	if err != nil {
		return err
	}
	if status.IsLocked {
		fmt.Println(color.YellowString("  unlock attempts locked for %ds (%d failed attempts)",
			status.RemainingSeconds, status.Attempts))
	}
	return nil
}

// Setup collects a fresh passphrase twice and initializes encryption for
// this user on both the backend and this device.
func (a *App) Setup(ctx context.Context) error {
	if a.session.State() != services.StateNotSetup {
		fmt.Println("setup is only available before encryption is configured")
		return nil
	}

	passphrase, err := GetPassphrase(os.Stdout, "Choose a passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	confirm, err := GetPassphrase(os.Stdout, "Repeat the passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(passphrase, confirm) {
		fmt.Println(color.RedString("✗") + " passphrases do not match")
		return nil
	}
	if len(passphrase) == 0 {
		fmt.Println(color.RedString("✗") + " passphrase must not be empty")
		return nil
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Setting up encryption..."
	s.Start()
	err = a.session.Setup(ctx, passphrase)
	s.Stop()

	if err != nil {
		fmt.Println(color.RedString("✗")+" setup failed:", err)
		return err
	}
	fmt.Println(color.GreenString("✓") + " encryption is set up and unlocked")
	return nil
}

// Unlock collects the passphrase and derives the session key. The cached
// lockout countdown is shown as a warning only; the attempt always goes
// through, the backend is the one enforcing the lockout.
func (a *App) Unlock(ctx context.Context) error {
	status, err := a.tracker.Status(ctx)
	if err == nil && status.IsLocked {
		fmt.Println(color.YellowString("unlock attempts are rate limited, about %ds remaining", status.RemainingSeconds))
	}

	passphrase, err := GetPassphrase(os.Stdout, "Enter your passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Verifying passphrase..."
	s.Start()
	err = a.session.Unlock(ctx, passphrase)
	s.Stop()

	switch {
	case err == nil:
		fmt.Println(color.GreenString("✓") + " unlocked")
		return nil
	case errors.Is(err, services.ErrInvalidPassphrase):
		a.tracker.NoteFailedUnlock(ctx)
		fmt.Println(color.RedString("✗") + " invalid passphrase")
		return err
	case errors.Is(err, services.ErrVerificationUnavailable):
		fmt.Println(color.YellowString("!") + " passphrase could not be verified, backend unreachable; try again later")
		return err
	case errors.Is(err, services.ErrNotSetUp):
		fmt.Println("encryption is not set up yet, use 'setup'")
		return err
	default:
		fmt.Println(color.RedString("✗")+" unlock failed:", err)
		return err
	}
}

// Lock discards the in-memory key and the local verification blob.
func (a *App) Lock(ctx context.Context) error {
	if err := a.session.Lock(ctx); err != nil {
		fmt.Println(color.RedString("✗")+" lock failed:", err)
		return err
	}
	fmt.Println(color.GreenString("✓") + " locked")
	return nil
}

// Lockout forces a refresh of the failed-unlock counter and prints it.
func (a *App) Lockout(ctx context.Context) error {
	if err := a.tracker.Refresh(ctx); err != nil {
		return err
	}
	status, err := a.tracker.Status(ctx)
	if err != nil {
		return err
	}
	if status.IsLocked {
		fmt.Println(color.YellowString("locked for another %ds (%d failed attempts)",
			status.RemainingSeconds, status.Attempts))
		return nil
	}
	fmt.Printf("not locked (%d failed attempts)\n", status.Attempts)
	return nil
}
