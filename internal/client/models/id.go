// Package models defines client-side data models used by the FieldSale CLI.
package models

import (
	"fmt"
)

// ID is a tagged entity identifier. An entity carries either a server-assigned
// identity (Remote) or a device-local placeholder minted before the server has
// confirmed creation (Local). Local ids are never sent to the server as-is.
//
// On disk and on the wire the id keeps the sign convention of the backend:
// remote ids are positive, local ids negative. Code must go through IsLocal
// instead of comparing signs on raw integers.
type ID struct {
	local bool
	n     int64 // magnitude, always > 0 for a non-zero ID
}

// LocalID returns a local-only id with the given positive sequence number.
func LocalID(seq int64) ID {
	if seq <= 0 {
		panic(fmt.Sprintf("models: local id sequence must be positive, got %d", seq))
	}
	return ID{local: true, n: seq}
}

// RemoteID returns a server-confirmed id.
func RemoteID(n int64) ID {
	if n <= 0 {
		panic(fmt.Sprintf("models: remote id must be positive, got %d", n))
	}
	return ID{n: n}
}

// ParseID decodes a stored/wire integer into an ID. Zero decodes to the zero
// ID (unset), negative values to local ids, positive to remote ids.
func ParseID(v int64) ID {
	switch {
	case v == 0:
		return ID{}
	case v < 0:
		return ID{local: true, n: -v}
	default:
		return ID{n: v}
	}
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id.n == 0 }

// IsLocal reports whether the id is a device-local placeholder.
func (id ID) IsLocal() bool { return id.local }

// Int64 returns the storage/wire encoding: negative for local ids, positive
// for remote ids, zero when unset.
func (id ID) Int64() int64 {
	if id.local {
		return -id.n
	}
	return id.n
}

func (id ID) String() string {
	if id.IsZero() {
		return "unset"
	}
	if id.local {
		return fmt.Sprintf("local:%d", id.n)
	}
	return fmt.Sprintf("remote:%d", id.n)
}
