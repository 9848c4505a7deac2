// Package settings persists the owner's identity and preferences as
// independent key-value records.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"glowbook/internal/core"
	"glowbook/internal/log"
	"glowbook/internal/storage"
)

// MaxPasscodeLength matches the passcode prompt's input limit.
const MaxPasscodeLength = 4

var (
	ErrInvalidPasscode = errors.New("passcode must be 1-4 digits")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidTheme    = errors.New("theme must be dark or light")
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type OwnerContact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// View is the client-facing settings snapshot. The passcode itself is never included.
type View struct {
	HasPasscode  bool          `json:"hasPasscode"`
	OwnerContact OwnerContact  `json:"ownerContact"`
	Currency     core.Currency `json:"currency"`
	Theme        Theme         `json:"theme"`
}

// Hasher turns an entered passcode into its stored form.
type Hasher interface {
	Hash(passcode string) (string, error)
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return p, nil }

// Store keeps the settings in memory and writes each record through on change.
type Store struct {
	mu       sync.RWMutex
	kv       storage.KV
	hasher   Hasher
	logger   *log.Logger
	passcode string
	contact  OwnerContact
	currency core.Currency
	theme    Theme
}

// Open loads every settings record, falling back to defaults for records that
// were never written. A stored currency outside the catalogue is kept as is.
func Open(ctx context.Context, kv storage.KV, hasher Hasher, logger *log.Logger) (*Store, error) {
	if hasher == nil {
		hasher = plainHasher{}
	}
	if logger == nil {
		logger = log.Component(log.ComponentSettings)
	}
	s := &Store{
		kv:       kv,
		hasher:   hasher,
		logger:   logger,
		currency: core.DefaultCurrency(),
		theme:    ThemeLight,
	}

	if v, ok, err := kv.Get(ctx, storage.KeyPasscode); err != nil {
		return nil, fmt.Errorf("load passcode: %w", err)
	} else if ok {
		s.passcode = v
	}

	if v, ok, err := kv.Get(ctx, storage.KeyOwnerContact); err != nil {
		return nil, fmt.Errorf("load owner contact: %w", err)
	} else if ok && v != "" {
		if err := json.Unmarshal([]byte(v), &s.contact); err != nil {
			return nil, fmt.Errorf("decode owner contact: %w", err)
		}
	}

	if v, ok, err := kv.Get(ctx, storage.KeyCurrency); err != nil {
		return nil, fmt.Errorf("load currency: %w", err)
	} else if ok && v != "" {
		if err := json.Unmarshal([]byte(v), &s.currency); err != nil {
			return nil, fmt.Errorf("decode currency: %w", err)
		}
	}

	if v, ok, err := kv.Get(ctx, storage.KeyTheme); err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	} else if ok && Theme(v) == ThemeDark {
		s.theme = ThemeDark
	}

	return s, nil
}

// Passcode returns the stored passcode form; empty means no lock is configured.
func (s *Store) Passcode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passcode
}

// SetPasscode configures the vault passcode. An empty code removes the lock.
func (s *Store) SetPasscode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	stored := ""
	if code != "" {
		if len(code) > MaxPasscodeLength || strings.Trim(code, "0123456789") != "" {
			return ErrInvalidPasscode
		}
		h, err := s.hasher.Hash(code)
		if err != nil {
			return fmt.Errorf("hash passcode: %w", err)
		}
		stored = h
	}

	s.mu.Lock()
	s.passcode = stored
	s.mu.Unlock()

	if err := s.kv.Set(ctx, storage.KeyPasscode, stored); err != nil {
		return fmt.Errorf("save passcode: %w", err)
	}
	s.logger.InfoContext(ctx, "Vault passcode updated", "configured", stored != "")
	return nil
}

func (s *Store) OwnerContact() OwnerContact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contact
}

func (s *Store) SetOwnerContact(ctx context.Context, c OwnerContact) error {
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)

	s.mu.Lock()
	s.contact = c
	s.mu.Unlock()

	return s.saveJSON(ctx, storage.KeyOwnerContact, c)
}

func (s *Store) Currency() core.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetCurrency selects a catalogue currency by code.
func (s *Store) SetCurrency(ctx context.Context, code string) error {
	c, ok := core.LookupCurrency(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	s.mu.Lock()
	s.currency = c
	s.mu.Unlock()

	return s.saveJSON(ctx, storage.KeyCurrency, c)
}

func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeDark && t != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
	}

	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	if err := s.kv.Set(ctx, storage.KeyTheme, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		HasPasscode:  s.passcode != "",
		OwnerContact: s.contact,
		Currency:     s.currency,
		Theme:        s.theme,
	}
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	s.logger.InfoContext(ctx, "Setting updated", log.FieldKey, key)
	return nil
}
