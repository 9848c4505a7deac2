package stats

import (
	"fmt"
	"time"

	"glowbook/internal/cache"
	"glowbook/internal/core"
)

// Source is the read side of the appointment store.
type Source interface {
	Snapshot() ([]core.Appointment, uint64)
}

// Engine memoizes the derived views keyed by (store version, parameters).
// A mutation bumps the version, so stale entries are never served; they age
// out of the LRU.
type Engine struct {
	src Source

	daily    cache.Cache[[]core.Appointment]
	monthly  cache.Cache[core.MonthStats]
	ledger   cache.Cache[[]core.LedgerEntry]
	history  cache.Cache[core.ClientHistory]
	calendar cache.Cache[map[int]int]
}

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 10 * time.Minute
)

func NewEngine(src Source) *Engine {
	return &Engine{
		src:      src,
		daily:    cache.NewLRUCache[[]core.Appointment](defaultCacheSize, defaultCacheTTL),
		monthly:  cache.NewLRUCache[core.MonthStats](defaultCacheSize, defaultCacheTTL),
		ledger:   cache.NewLRUCache[[]core.LedgerEntry](defaultCacheSize, defaultCacheTTL),
		history:  cache.NewLRUCache[core.ClientHistory](defaultCacheSize, defaultCacheTTL),
		calendar: cache.NewLRUCache[map[int]int](defaultCacheSize, defaultCacheTTL),
	}
}

// Caches returns the underlying caches for registration with a cache.Manager.
func (e *Engine) Caches() []cache.Cleaner {
	return []cache.Cleaner{e.daily, e.monthly, e.ledger, e.history, e.calendar}
}

// Daily returns the appointments of one day sorted by time.
func (e *Engine) Daily(date core.Date) []core.Appointment {
	apps, v := e.src.Snapshot()
	out := e.daily.GetOrCompute(fmt.Sprintf("%d|%s", v, date), func() []core.Appointment {
		return SortByTime(DailyView(apps, date))
	})
	return append([]core.Appointment{}, out...)
}

func (e *Engine) Monthly(year, month int) core.MonthStats {
	apps, v := e.src.Snapshot()
	return e.monthly.GetOrCompute(fmt.Sprintf("%d|%d-%d", v, year, month), func() core.MonthStats {
		return MonthlyStats(apps, year, month)
	})
}

func (e *Engine) Ledger() []core.LedgerEntry {
	apps, v := e.src.Snapshot()
	out := e.ledger.GetOrCompute(fmt.Sprint(v), func() []core.LedgerEntry {
		return OutstandingLedger(apps)
	})
	return append([]core.LedgerEntry{}, out...)
}

func (e *Engine) History(clientName string) core.ClientHistory {
	apps, v := e.src.Snapshot()
	h := e.history.GetOrCompute(fmt.Sprintf("%d|%s", v, clientName), func() core.ClientHistory {
		return ClientHistory(apps, clientName)
	})
	h.Appointments = append([]core.Appointment{}, h.Appointments...)
	return h
}

// Roster is cheap enough to compute on every call.
func (e *Engine) Roster() []string {
	apps, _ := e.src.Snapshot()
	return ClientRoster(apps)
}

func (e *Engine) Calendar(year, month int) map[int]int {
	apps, v := e.src.Snapshot()
	counts := e.calendar.GetOrCompute(fmt.Sprintf("%d|%d-%d", v, year, month), func() map[int]int {
		return CalendarDayCounts(apps, year, month)
	})
	out := make(map[int]int, len(counts))
	for d, n := range counts {
		out[d] = n
	}
	return out
}
