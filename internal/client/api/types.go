package api

import (
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/models"
)

// envelope is the backend's standard response shape: a success flag plus a
// payload. On failure the flag is false and error carries a short reason.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type contactPayload struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"ownerId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type contactEnvelope struct {
	envelope
	Data *contactPayload `json:"data"`
}

type productPayload struct {
	ID         int64  `json:"id"`
	OwnerID    int64  `json:"ownerId"`
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int64  `json:"quantity"`
}

type productEnvelope struct {
	envelope
	Data *productPayload `json:"data"`
}

type supplierPayload struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"ownerId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type suppliersEnvelope struct {
	envelope
	Data []supplierPayload `json:"data"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginPayload struct {
	Token   string `json:"token"`
	OwnerID int64  `json:"ownerId"`
}

type loginEnvelope struct {
	envelope
	Data *loginPayload `json:"data"`
}

// contactToWire builds the request body. Local placeholder ids are never sent
// to the server: the create path zeroes the id before reaching here.
func contactToWire(c *models.Contact) contactPayload {
	return contactPayload{
		ID:      c.ID.Int64(),
		OwnerID: c.OwnerID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

// contactFromWire validates the server payload; a missing or non-positive id
// is a schema violation, not a zero value to shrug off.
func contactFromWire(p *contactPayload) (*models.Contact, error) {
	if p == nil {
		return nil, fmt.Errorf("missing data payload")
	}
	if p.ID <= 0 {
		return nil, fmt.Errorf("server returned non-positive contact id %d", p.ID)
	}
	return &models.Contact{
		ID:      models.RemoteID(p.ID),
		OwnerID: p.OwnerID,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
	}, nil
}

func productToWire(p *models.Product) productPayload {
	return productPayload{
		ID:         p.ID.Int64(),
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		SKU:        p.SKU,
		PriceCents: p.PriceCents,
		Quantity:   p.Quantity,
	}
}

func productFromWire(p *productPayload) (*models.Product, error) {
	if p == nil {
		return nil, fmt.Errorf("missing data payload")
	}
	if p.ID <= 0 {
		return nil, fmt.Errorf("server returned non-positive product id %d", p.ID)
	}
	return &models.Product{
		ID:         models.RemoteID(p.ID),
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		SKU:        p.SKU,
		PriceCents: p.PriceCents,
		Quantity:   p.Quantity,
	}, nil
}

func supplierFromWire(p supplierPayload) (models.Supplier, error) {
	if p.ID <= 0 {
		return models.Supplier{}, fmt.Errorf("server returned non-positive supplier id %d", p.ID)
	}
	return models.Supplier{
		ID:      models.RemoteID(p.ID),
		OwnerID: p.OwnerID,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
	}, nil
}
