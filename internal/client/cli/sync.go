package cli

import (
	"context"
	"fmt"
)

// Sync nudges both trackers to push everything pending right now.
func (a *App) Sync(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	pending := a.ws.contactTracker.Count() + a.ws.productTracker.Count()
	if pending == 0 {
		printlnFn("Nothing to sync.")
		return nil
	}
	if !a.monitor.IsOnline() {
		printlnFn(fmt.Sprintf("Offline; %d change(s) will sync when connectivity returns.", pending))
		return nil
	}
	a.ws.contactTracker.ScheduleSyncNow(ctx)
	a.ws.productTracker.ScheduleSyncNow(ctx)
	printlnFn(fmt.Sprintf("Sync started for %d change(s).", pending))
	return nil
}

// Status reports connectivity and per-type pending counts.
func (a *App) Status(ctx context.Context) error {
	if a.monitor.IsOnline() {
		printlnFn("Server: online")
	} else {
		printlnFn("Server: offline")
	}
	if !a.isLoggedIn() {
		printlnFn("Session: not logged in")
		return nil
	}
	printlnFn("Session:", a.session.Username())
	printlnFn(fmt.Sprintf("Pending: %d contact(s), %d product(s)",
		a.ws.contactTracker.Count(), a.ws.productTracker.Count()))
	return nil
}
