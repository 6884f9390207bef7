package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Contacts(ctx context.Context) error
	AddContact(ctx context.Context) error
	EditContact(ctx context.Context, args []string) error
	DeleteContact(ctx context.Context, args []string) error
	Products(ctx context.Context) error
	AddProduct(ctx context.Context) error
	EditProduct(ctx context.Context, args []string) error
	RemoveProduct(ctx context.Context, args []string) error
	Suppliers(ctx context.Context) error
	RefreshSuppliers(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print their
// own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fs %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: contacts, addcontact, editcontact <id>, delcontact <id>,")
				printlnFn("  products, addproduct, editproduct <id>, rmproduct <id>,")
				printlnFn("  suppliers, refresh, sync, status, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "c", "contacts":
			_ = a.Contacts(ctx)

		case "addcontact":
			_ = a.AddContact(ctx)

		case "editcontact":
			_ = a.EditContact(ctx, args)

		case "delcontact":
			_ = a.DeleteContact(ctx, args)

		case "p", "products":
			_ = a.Products(ctx)

		case "addproduct":
			_ = a.AddProduct(ctx)

		case "editproduct":
			_ = a.EditProduct(ctx, args)

		case "rmproduct":
			_ = a.RemoveProduct(ctx, args)

		case "suppliers":
			_ = a.Suppliers(ctx)

		case "refresh":
			_ = a.RefreshSuppliers(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
