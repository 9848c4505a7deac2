// Package ledger owns the authoritative appointment collection and writes it
// through to the key-value substrate on every mutation.
package ledger

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("appointment not found")

	// ErrPersistence wraps a failed write-through. The in-memory mutation
	// that triggered it has already been applied.
	ErrPersistence = errors.New("persist appointments")

	ErrInvalidSnapshot = errors.New("invalid appointment snapshot")
)

type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeStatus   ChangeKind = "status_changed"
	ChangeRestored ChangeKind = "restored"
)

// Change describes one applied mutation. ID is empty for ChangeRestored.
type Change struct {
	Kind      ChangeKind
	ID        string
	Version   uint64
	Persisted bool
}

// Observer is notified after each mutation, outside the store lock.
type Observer interface {
	LedgerChanged(ctx context.Context, c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, c Change)

func (f ObserverFunc) LedgerChanged(ctx context.Context, c Change) { f(ctx, c) }
