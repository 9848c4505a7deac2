package memory

import (
	"context"
	"reflect"
	"testing"

	"glowbook/internal/core"
)

func TestUpsertReplacesExistingRow(t *testing.T) {
	m := New()
	ctx := context.Background()
	a := core.Appointment{
		ID: "a1", Date: "2024-06-01", Time: "10:00", ClientName: "Ada",
		Service: core.ServiceNails, Status: core.StatusConfirmed,
		TotalPrice: core.Money{Cents: 3000000}, AmountPaid: core.Money{Cents: 1500000},
	}
	m.Upsert(ctx, a)
	m.Upsert(ctx, core.Appointment{ID: "b2", ClientName: "Bisi"})

	a.Status = core.StatusCompleted
	a.AmountPaid = a.TotalPrice
	m.Upsert(ctx, a)

	rows := m.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := []string{"a1", "2024-06-01", "10:00", "Ada", "Nails", "completed", "30000", "30000", "0"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("row = %v, want %v", rows[0], want)
	}
}

func TestReplace(t *testing.T) {
	m := New()
	ctx := context.Background()
	m.Upsert(ctx, core.Appointment{ID: "old"})
	m.Replace(ctx, []core.Appointment{{ID: "x"}, {ID: "y"}})

	rows := m.Rows()
	if len(rows) != 2 || rows[0][0] != "x" || rows[1][0] != "y" {
		t.Fatalf("rows = %v", rows)
	}
	m.Upsert(ctx, core.Appointment{ID: "y", ClientName: "Yemi"})
	if got := m.Rows(); len(got) != 2 || got[1][3] != "Yemi" {
		t.Fatalf("rows after upsert = %v", got)
	}
}
