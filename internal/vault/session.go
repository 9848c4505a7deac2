// Package vault gates the sensitive views and actions behind the owner's passcode.
package vault

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Action is a gated operation.
type Action string

const (
	ActionReports Action = "reports"
	ActionReveal  Action = "reveal"
	ActionExport  Action = "export"
)

var (
	ErrAccessDenied    = errors.New("invalid passcode")
	ErrNoPendingAction = errors.New("no gated action awaiting a passcode")
	ErrUnknownAction   = errors.New("unknown gated action")
)

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionReports, ActionReveal, ActionExport:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Session is the transient access state of one running dashboard. It starts
// locked with nothing pending and is never persisted.
type Session struct {
	mu       sync.Mutex
	unlocked bool
	pending  Action
}

func NewSession() *Session { return &Session{} }

// State is a point-in-time copy of a Session.
type State struct {
	Unlocked bool   `json:"unlocked"`
	Pending  Action `json:"pending,omitempty"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Unlocked: s.unlocked, Pending: s.pending}
}

// Unlocked reports whether the session-wide reveal is in effect.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// ContactsRevealed reports whether contact details may be shown unmasked.
func (s *Session) ContactsRevealed() bool { return s.Unlocked() }

// Pending returns the action awaiting a passcode, if any.
func (s *Session) Pending() (Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.pending != ""
}
