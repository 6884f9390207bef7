// Package api talks to the FieldSale backend over HTTP/JSON. The backend is a
// black box to the rest of the client: the sync engine only sees the Client
// interface and the error taxonomy in errors.go.
package api

import (
	"context"

	"github.com/dkazakov/fieldsale/internal/client/models"
)

// TokenSource supplies the current access token for outbound requests.
// An empty string means "not logged in"; the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// LoginResult is what a successful login hands back to the session layer.
type LoginResult struct {
	Token   string
	OwnerID int64
}

// Client is the remote-service contract consumed by the sync workers, the
// session manager and the connectivity monitor.
//
// Create calls must send a zero identifier and get the server-assigned
// positive id back; Update and Delete carry the existing positive id. Any
// failure (transport, HTTP status, or success=false in the body) comes back
// as an error the caller treats as "retry later".
type Client interface {
	Ping(ctx context.Context) error
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	CreateContact(ctx context.Context, c *models.Contact) (*models.Contact, error)
	UpdateContact(ctx context.Context, c *models.Contact) (*models.Contact, error)
	DeleteContact(ctx context.Context, serverID int64) error

	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error)

	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}
