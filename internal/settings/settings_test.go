package settings

import (
	"context"
	"errors"
	"testing"

	"glowbook/internal/core"
	"glowbook/internal/log"
	"glowbook/internal/storage"
)

func openStore(t *testing.T, kv storage.KV, h Hasher) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, h, log.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestDefaults(t *testing.T) {
	v := openStore(t, storage.NewMemoryKV(), nil).View()
	if v.HasPasscode || v.Theme != ThemeLight || v.Currency.Code != "NGN" || v.OwnerContact != (OwnerContact{}) {
		t.Fatalf("unexpected defaults: %+v", v)
	}
}

func TestPersistedShapes(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := openStore(t, kv, nil)

	if err := s.SetPasscode(ctx, "1234"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	if err := s.SetOwnerContact(ctx, OwnerContact{Email: " glow@example.com ", Phone: "+234 704"}); err != nil {
		t.Fatalf("SetOwnerContact: %v", err)
	}
	if err := s.SetCurrency(ctx, "usd"); err != nil {
		t.Fatalf("SetCurrency: %v", err)
	}
	if err := s.SetTheme(ctx, ThemeDark); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}

	want := map[string]string{
		storage.KeyPasscode:     "1234",
		storage.KeyOwnerContact: `{"email":"glow@example.com","phone":"+234 704"}`,
		storage.KeyCurrency:     `{"code":"USD","symbol":"$","label":"US Dollar (USD)"}`,
		storage.KeyTheme:        "dark",
	}
	for key, w := range want {
		got, ok, _ := kv.Get(ctx, key)
		if !ok || got != w {
			t.Errorf("%s = %q, want %q", key, got, w)
		}
	}

	reopened := openStore(t, kv, nil)
	if reopened.View() != s.View() || reopened.Passcode() != "1234" {
		t.Fatalf("reopened view = %+v, want %+v", reopened.View(), s.View())
	}
}

func TestSetPasscodeValidation(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryKV(), nil)

	for _, bad := range []string{"12345", "12a4", "-12"} {
		if err := s.SetPasscode(ctx, bad); !errors.Is(err, ErrInvalidPasscode) {
			t.Errorf("SetPasscode(%q) err = %v, want ErrInvalidPasscode", bad, err)
		}
	}

	s.SetPasscode(ctx, "0007")
	if err := s.SetPasscode(ctx, ""); err != nil {
		t.Fatalf("clearing passcode: %v", err)
	}
	if s.View().HasPasscode {
		t.Fatal("empty passcode must remove the lock")
	}
}

type prefixHasher struct{}

func (prefixHasher) Hash(p string) (string, error) { return "h:" + p, nil }

func TestSetPasscodeStoresHashedForm(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := openStore(t, kv, prefixHasher{})
	s.SetPasscode(ctx, "42")
	if got, _, _ := kv.Get(ctx, storage.KeyPasscode); got != "h:42" || s.Passcode() != "h:42" {
		t.Fatalf("stored passcode = %q", got)
	}
}

func TestRejectsUnknownCurrencyAndTheme(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryKV(), nil)
	if err := s.SetCurrency(ctx, "XYZ"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("err = %v", err)
	}
	if err := s.SetTheme(ctx, "sepia"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("err = %v", err)
	}
	if s.Currency() != core.DefaultCurrency() || s.Theme() != ThemeLight {
		t.Fatal("rejected updates changed settings")
	}
}

func TestOpenRejectsCorruptContact(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	kv.Set(ctx, storage.KeyOwnerContact, "{not json")
	if _, err := Open(ctx, kv, nil, log.Discard()); err == nil {
		t.Fatal("expected decode error")
	}
}
