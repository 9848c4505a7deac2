package stats

import (
	"testing"

	"glowbook/internal/cache"
	"glowbook/internal/core"
)

type fakeSource struct {
	apps    []core.Appointment
	version uint64
	reads   int
}

func (f *fakeSource) Snapshot() ([]core.Appointment, uint64) {
	f.reads++
	return f.apps, f.version
}

func (f *fakeSource) complete(id string) {
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].Status = core.StatusCompleted
			f.apps[i].AmountPaid = f.apps[i].TotalPrice
		}
	}
	f.version++
}

func TestEngineEndToEndRecompute(t *testing.T) {
	src := &fakeSource{apps: []core.Appointment{appt("ada-1", "Ada", "2024-06-01", "10:00", 3000000, 1500000)}, version: 1}
	e := NewEngine(src)

	want := core.MonthStats{
		Year: 2024, Month: 6,
		TotalRevenue:      core.Money{Cents: 3000000},
		TotalDeposits:     core.Money{Cents: 1500000},
		TotalBalance:      core.Money{Cents: 1500000},
		UniqueClientCount: 1,
	}
	if got := e.Monthly(2024, 6); got != want {
		t.Fatalf("Monthly = %+v, want %+v", got, want)
	}
	if len(e.Ledger()) != 1 {
		t.Fatal("expected one outstanding entry")
	}

	src.complete("ada-1")

	if got := e.Monthly(2024, 6); got.TotalBalance.Cents != 0 || got.TotalDeposits.Cents != 3000000 {
		t.Fatalf("Monthly after completion = %+v", got)
	}
	if len(e.Ledger()) != 0 {
		t.Fatal("ledger should be empty after completion")
	}
}

func TestEngineServesCachedResultForSameVersion(t *testing.T) {
	src := &fakeSource{apps: []core.Appointment{appt("1", "Ada", "2024-06-01", "10:00", 100, 0)}, version: 7}
	e := NewEngine(src)

	e.Calendar(2024, 6)
	first := e.Calendar(2024, 6)
	first[1] = 99

	if got := e.Calendar(2024, 6); got[1] != 1 {
		t.Fatalf("cached counts leaked a caller mutation: %v", got)
	}
	if hits, _ := e.calendar.(*cache.LRUCache[map[int]int]).Stats(); hits != 2 {
		t.Fatalf("calendar cache hits = %d, want 2", hits)
	}

	daily := e.Daily("2024-06-01")
	daily[0].ClientName = "changed"
	if e.Daily("2024-06-01")[0].ClientName != "Ada" {
		t.Fatal("cached daily view leaked a caller mutation")
	}

	if h := e.History("Ada"); h.LifetimeValue.Cents != 100 || len(h.Appointments) != 1 {
		t.Fatalf("History = %+v", h)
	}
	if r := e.Roster(); len(r) != 1 || r[0] != "Ada" {
		t.Fatalf("Roster = %v", r)
	}
	if len(e.Caches()) != 5 {
		t.Fatal("expected five caches")
	}
}
