package google

import (
	"context"
	"strings"
	"testing"

	"glowbook/internal/core"
	"glowbook/internal/log"
)

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Discard())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRejectsMissingCredentialFile(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet", ServiceAccountFile: t.TempDir() + "/missing.json"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("err = %v", err)
	}
}

func TestUninitializedClient(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheet: "Appointments", logger: log.Discard()}
	if err := c.Upsert(context.Background(), core.Appointment{ID: "a"}); err == nil {
		t.Fatal("expected error without service")
	}
	if err := c.Replace(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
	if got := c.rangeFor(7); got != "Appointments!A7:I7" {
		t.Fatalf("rangeFor = %s", got)
	}
}

func TestFindRow(t *testing.T) {
	values := [][]interface{}{{"ID"}, {"a1"}, {}, {" b2 "}}
	cases := map[string]int{"a1": 2, "b2": 4, "zz": 0}
	for id, want := range cases {
		if got := findRow(values, id); got != want {
			t.Errorf("findRow(%q) = %d, want %d", id, got, want)
		}
	}
	if nextRow(values) != 5 || nextRow(nil) != 2 {
		t.Fatal("nextRow mismatch")
	}
	if !hasHeader(values) || hasHeader([][]interface{}{{"a1"}}) {
		t.Fatal("hasHeader mismatch")
	}
	if lastColumn(9) != "I" {
		t.Fatalf("lastColumn(9) = %s", lastColumn(9))
	}
}
