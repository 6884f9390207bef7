package models

// Supplier is read-mostly reference data pulled from the server. Suppliers are
// not part of the write-sync path: they always carry remote ids.
type Supplier struct {
	ID      ID
	OwnerID int64

	Name  string
	Email string
	Phone string
}
