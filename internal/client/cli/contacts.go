package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/common"
)

var errNotLoggedIn = errors.New("not logged in")

// requireLogin guards commands that need an open workspace.
func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		printlnFn("Please login first.")
		return errNotLoggedIn
	}
	return nil
}

// parseIDArg parses the single <id> argument of edit/delete commands.
func parseIDArg(args []string, usage string) (models.ID, error) {
	if len(args) != 1 {
		printlnFn("Usage:", usage)
		return models.ID{}, fmt.Errorf("usage: %s", usage)
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n == 0 {
		printlnFn("Bad id:", args[0])
		return models.ID{}, fmt.Errorf("bad id %q", args[0])
	}
	return models.ParseID(n), nil
}

// syncMarker renders the per-row sync state for listings.
func syncMarker(id models.ID, dirty bool) string {
	switch {
	case id.IsLocal():
		return "[new]"
	case dirty:
		return "[pending]"
	default:
		return ""
	}
}

// Contacts lists the visible contacts.
func (a *App) Contacts(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	list := a.ws.contacts.List(ctx)
	if len(list) == 0 {
		printlnFn("No contacts yet.")
		return nil
	}
	for _, c := range list {
		printlnFn(fmt.Sprintf("%12d  %-25s %-25s %-15s %s",
			c.ID.Int64(), c.Name, c.Email, c.Phone, syncMarker(c.ID, c.Dirty)))
	}
	return nil
}

// AddContact prompts for the contact fields and saves a new record.
func (a *App) AddContact(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	c := &models.Contact{}
	var err error
	if c.Name, err = getSimpleText(a.reader, "Name", os.Stdout); err != nil {
		return err
	}
	if c.Email, err = getSimpleText(a.reader, "Email", os.Stdout); err != nil {
		return err
	}
	if c.Phone, err = getSimpleText(a.reader, "Phone", os.Stdout); err != nil {
		return err
	}
	if c.Address, err = getSimpleText(a.reader, "Address", os.Stdout); err != nil {
		return err
	}

	if err := a.ws.contacts.Save(ctx, c); err != nil {
		printlnFn("Save failed:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Saved contact %d (queued for sync).", c.ID.Int64()))
	return nil
}

// EditContact re-prompts every field of an existing contact, keeping current
// values on empty input, and saves the result.
func (a *App) EditContact(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseIDArg(args, "editcontact <id>")
	if err != nil {
		return err
	}

	c, err := a.ws.contacts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such contact:", args[0])
		}
		return err
	}

	if c.Name, err = GetOptionalText(a.reader, "Name", c.Name, os.Stdout); err != nil {
		return err
	}
	if c.Email, err = GetOptionalText(a.reader, "Email", c.Email, os.Stdout); err != nil {
		return err
	}
	if c.Phone, err = GetOptionalText(a.reader, "Phone", c.Phone, os.Stdout); err != nil {
		return err
	}
	if c.Address, err = GetOptionalText(a.reader, "Address", c.Address, os.Stdout); err != nil {
		return err
	}

	if err := a.ws.contacts.Save(ctx, c); err != nil {
		printlnFn("Save failed:", err.Error())
		return err
	}
	printlnFn("Saved (queued for sync).")
	return nil
}

// DeleteContact tombstones a contact; the server copy goes away on the next
// sync pass.
func (a *App) DeleteContact(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseIDArg(args, "delcontact <id>")
	if err != nil {
		return err
	}

	if err := a.ws.contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such contact:", args[0])
		} else {
			printlnFn("Delete failed:", err.Error())
		}
		return err
	}
	printlnFn("Deleted (queued for sync).")
	return nil
}
