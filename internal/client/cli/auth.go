package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials, authenticates against the server, and opens
// the owner's workspace. Login requires connectivity; cached data from an
// earlier session stays readable only through a restored session.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in; logout first to switch accounts.")
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.session.Login(ctx, a.api, username, password); err != nil {
		switch {
		case errors.Is(err, api.ErrUnavailable):
			printlnFn("Server unavailable; try again once you are back online.")
		case errors.Is(err, common.ErrUnauthorized):
			printlnFn("Wrong username or password.")
		default:
			printlnFn("Login failed:", err.Error())
		}
		return err
	}

	if err := a.openWorkspace(ctx); err != nil {
		printlnFn("Login succeeded but workspace setup failed:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Logged in as %s.", username))
	return nil
}

// Logout closes the workspace, clears the saved session, and wipes the local
// caches. Unsynced changes are lost, so the user is warned when any exist.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}

	pending := a.ws.contactTracker.Count() + a.ws.productTracker.Count()
	if pending > 0 {
		printlnFn(fmt.Sprintf("Warning: discarding %d unsynced change(s).", pending))
	}

	if err := a.ws.contactCache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing contacts: %w", err)
	}
	if err := a.ws.productCache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	if err := a.repos.Suppliers.Clear(ctx); err != nil {
		return fmt.Errorf("clearing suppliers: %w", err)
	}
	a.closeWorkspace()

	if err := a.repos.Metadata.Clear(ctx); err != nil {
		return fmt.Errorf("clearing metadata: %w", err)
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}
