package cli

import (
	"context"
	"fmt"
)

// Suppliers lists the locally cached supplier directory.
func (a *App) Suppliers(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	list, err := a.ws.suppliers.List(ctx)
	if err != nil {
		printlnFn("Listing suppliers failed:", err.Error())
		return err
	}
	if len(list) == 0 {
		printlnFn("No suppliers cached; run 'refresh' while online.")
		return nil
	}
	for _, s := range list {
		printlnFn(fmt.Sprintf("%12d  %-25s %-25s %s", s.ID.Int64(), s.Name, s.Email, s.Phone))
	}
	return nil
}

// RefreshSuppliers replaces the cached supplier directory with the server's.
func (a *App) RefreshSuppliers(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.ws.suppliers.Refresh(ctx); err != nil {
		printlnFn("Refresh failed:", err.Error())
		return err
	}
	printlnFn("Suppliers refreshed.")
	return nil
}
