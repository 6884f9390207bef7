package models

// Product is an inventory record persisted locally and synced with the server.
type Product struct {
	ID      ID
	OwnerID int64

	Name string
	SKU  string
	// PriceCents avoids floating point in money fields.
	PriceCents int64
	Quantity   int64

	Dirty bool
}

// Key returns the product's identifier.
func (p *Product) Key() ID { return p.ID }

// SetKey replaces the product's identifier.
func (p *Product) SetKey(id ID) { p.ID = id }
