// Package common defines shared constants and sentinel errors used across
// FieldSale client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
