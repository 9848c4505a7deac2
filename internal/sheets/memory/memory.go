// Package memory is an in-process sheets.Mirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"glowbook/internal/core"
	"glowbook/internal/sheets"
)

var _ sheets.Mirror = (*Mirror)(nil)

type Mirror struct {
	mu    sync.Mutex
	rows  [][]string
	index map[string]int
}

func New() *Mirror {
	return &Mirror{index: make(map[string]int)}
}

func (m *Mirror) Upsert(_ context.Context, a core.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := sheets.Row(a)
	if i, ok := m.index[a.ID]; ok {
		m.rows[i] = row
		return nil
	}
	m.index[a.ID] = len(m.rows)
	m.rows = append(m.rows, row)
	return nil
}

func (m *Mirror) Replace(_ context.Context, apps []core.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make([][]string, 0, len(apps))
	m.index = make(map[string]int, len(apps))
	for _, a := range apps {
		m.index[a.ID] = len(m.rows)
		m.rows = append(m.rows, sheets.Row(a))
	}
	return nil
}

// Rows returns a copy of the body rows in sheet order.
func (m *Mirror) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
