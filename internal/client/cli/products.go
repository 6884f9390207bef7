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

// getInt prompts for an integer field; empty input keeps current.
func getInt(a *App, prompt string, current int64) (int64, error) {
	answer, err := GetOptionalText(a.reader, prompt, strconv.FormatInt(current, 10), os.Stdout)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		printlnFn("Not a number:", answer)
		return 0, fmt.Errorf("bad number %q", answer)
	}
	return n, nil
}

// Products lists the cached inventory.
func (a *App) Products(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	list := a.ws.products.List(ctx)
	if len(list) == 0 {
		printlnFn("No products yet.")
		return nil
	}
	for _, p := range list {
		printlnFn(fmt.Sprintf("%12d  %-25s %-12s %8.2f  x%-5d %s",
			p.ID.Int64(), p.Name, p.SKU, float64(p.PriceCents)/100, p.Quantity, syncMarker(p.ID, p.Dirty)))
	}
	return nil
}

// AddProduct prompts for the product fields and saves a new record.
func (a *App) AddProduct(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	p := &models.Product{}
	var err error
	if p.Name, err = getSimpleText(a.reader, "Name", os.Stdout); err != nil {
		return err
	}
	if p.SKU, err = getSimpleText(a.reader, "SKU", os.Stdout); err != nil {
		return err
	}
	if p.PriceCents, err = getInt(a, "Price (cents)", 0); err != nil {
		return err
	}
	if p.Quantity, err = getInt(a, "Quantity", 0); err != nil {
		return err
	}

	if err := a.ws.products.Save(ctx, p); err != nil {
		printlnFn("Save failed:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Saved product %d (queued for sync).", p.ID.Int64()))
	return nil
}

// EditProduct re-prompts every field of an existing product, keeping current
// values on empty input, and saves the result.
func (a *App) EditProduct(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseIDArg(args, "editproduct <id>")
	if err != nil {
		return err
	}

	p, err := a.ws.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such product:", args[0])
		}
		return err
	}

	if p.Name, err = GetOptionalText(a.reader, "Name", p.Name, os.Stdout); err != nil {
		return err
	}
	if p.SKU, err = GetOptionalText(a.reader, "SKU", p.SKU, os.Stdout); err != nil {
		return err
	}
	if p.PriceCents, err = getInt(a, "Price (cents)", p.PriceCents); err != nil {
		return err
	}
	if p.Quantity, err = getInt(a, "Quantity", p.Quantity); err != nil {
		return err
	}

	if err := a.ws.products.Save(ctx, p); err != nil {
		printlnFn("Save failed:", err.Error())
		return err
	}
	printlnFn("Saved (queued for sync).")
	return nil
}

// RemoveProduct drops a product from the local cache only.
func (a *App) RemoveProduct(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseIDArg(args, "rmproduct <id>")
	if err != nil {
		return err
	}

	if err := a.ws.products.Remove(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such product:", args[0])
		} else {
			printlnFn("Remove failed:", err.Error())
		}
		return err
	}
	printlnFn("Removed locally (the server copy is untouched).")
	return nil
}
