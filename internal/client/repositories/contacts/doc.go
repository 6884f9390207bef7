// Package contacts persists customer records in the local SQLite store.
//
// Rows are keyed by (owner_id, id) where id keeps the backend's sign
// convention: server-assigned ids are positive, device-minted placeholders
// negative. Soft-deleted rows stay in the table until the delete is confirmed
// by the server, so they are excluded from list reads but still visible to
// point lookups and the dirty query.
package contacts
