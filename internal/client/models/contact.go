package models

// Contact is a customer record persisted locally and synced with the server.
type Contact struct {
	// ID is the tagged identifier; local until the server confirms creation.
	ID ID

	// OwnerID scopes the record to the sales agent who owns it.
	OwnerID int64

	Name    string
	Email   string
	Phone   string
	Address string

	// Dirty marks local mutations not yet confirmed by the server.
	Dirty bool

	// Deleted is a soft-delete tombstone; the record is hidden from reads and
	// physically purged only after the server confirms the delete.
	Deleted bool
}

// Key returns the contact's identifier.
func (c *Contact) Key() ID { return c.ID }

// SetKey replaces the contact's identifier.
func (c *Contact) SetKey(id ID) { c.ID = id }
