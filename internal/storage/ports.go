// Package storage is the durable key-value substrate behind the ledger and settings.
package storage

import "context"

// Persisted record keys. Each key holds one independent record.
const (
	KeyAppointments = "baddieglow_empire_v2"
	KeyPasscode     = "glow_vault_code"
	KeyOwnerContact = "glow_owner_contact"
	KeyTheme        = "glow_theme"
	KeyCurrency     = "glow_currency"
)

// KV is a string key-value store with load/save semantics.
type KV interface {
	// Get returns the stored value; ok is false when the key was never written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}
