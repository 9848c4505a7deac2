package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"glowbook/internal/core"
	"glowbook/internal/log"
	"glowbook/internal/storage"
)

// Options configures a Store. Zero values are usable.
type Options struct {
	Logger    *log.Logger
	Observers []Observer
	// Now is the clock used for seed data.
	Now func() time.Time
	// NewID generates appointment ids.
	NewID func() string
	// Seed loads the sample appointment when nothing has been persisted yet.
	Seed bool
}

// Store is the single-writer appointment collection. Reads return copies.
type Store struct {
	mu      sync.RWMutex
	kv      storage.KV
	items   []core.Appointment
	index   map[string]int
	version uint64

	observers []Observer
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

// Open loads the persisted collection from kv. A corrupt record is an error,
// a missing one starts an empty store (or the sample when opts.Seed is set).
func Open(ctx context.Context, kv storage.KV, opts Options) (*Store, error) {
	s := &Store{
		kv:        kv,
		index:     make(map[string]int),
		observers: opts.Observers,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.logger == nil {
		s.logger = log.Component(log.ComponentLedger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	raw, ok, err := kv.Get(ctx, storage.KeyAppointments)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	if !ok {
		if opts.Seed {
			s.replace(sampleAppointments(core.DateOf(s.now())))
			if err := s.persistLocked(ctx); err != nil {
				s.logger.WarnContext(ctx, "Seed data not persisted", log.FieldError, err)
			}
		}
		s.logger.InfoContext(ctx, "Ledger opened", log.FieldOperation, log.OpLoad, log.FieldCount, len(s.items))
		return s, nil
	}

	items, err := Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	s.replace(items)
	s.logger.InfoContext(ctx, "Ledger opened", log.FieldOperation, log.OpLoad, log.FieldCount, len(items))
	return s, nil
}

// Create appends a new appointment with a fresh id and status confirmed.
// The draft is taken as given; form-level validation happens before this call.
// On ErrPersistence the returned appointment is valid and kept in memory.
func (s *Store) Create(ctx context.Context, d core.AppointmentDraft) (core.Appointment, error) {
	clientID := d.ClientID
	if clientID == "" {
		clientID = core.ManualClientID
	}

	s.mu.Lock()
	id := s.newID()
	for _, taken := s.index[id]; taken; _, taken = s.index[id] {
		id = s.newID()
	}
	a := core.Appointment{
		ID:                 id,
		ClientID:           clientID,
		ClientName:         d.ClientName,
		ClientPhone:        d.ClientPhone,
		SocialContactName:  d.SocialContactName,
		LeadSource:         d.LeadSource,
		ReferralBy:         d.ReferralBy,
		PaymentAccountName: d.PaymentAccountName,
		Service:            d.Service,
		Date:               d.Date,
		Time:               d.Time,
		AmountPaid:         d.AmountPaid,
		TotalPrice:         d.TotalPrice,
		Notes:              d.Notes,
		Status:             core.StatusConfirmed,
	}
	s.index[a.ID] = len(s.items)
	s.items = append(s.items, a)
	s.version++
	change := Change{Kind: ChangeCreated, ID: a.ID, Version: s.version}
	perr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Appointment booked", log.NewFields().
		WithOperation(log.OpCreate).
		WithAppointment(a.ID, string(a.Status), string(a.Service), a.TotalPrice.Cents).
		ToSlice()...)

	return a, s.finish(ctx, change, perr)
}

// UpdateStatus sets the status of one appointment. Any transition is accepted;
// moving to completed also settles the balance (amountPaid = totalPrice).
func (s *Store) UpdateStatus(ctx context.Context, id string, status core.Status) (core.Appointment, error) {
	if !status.Valid() {
		return core.Appointment{}, fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return core.Appointment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a := &s.items[i]
	from := a.Status
	a.Status = status
	if status == core.StatusCompleted {
		a.AmountPaid = a.TotalPrice
	}
	updated := *a
	s.version++
	change := Change{Kind: ChangeStatus, ID: id, Version: s.version}
	perr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Appointment status changed",
		log.FieldOperation, log.OpUpdateStatus,
		log.FieldAppointmentID, id,
		"from", string(from),
		log.FieldStatus, string(status))

	return updated, s.finish(ctx, change, perr)
}

// Complete is the explicit "mark complete" action.
func (s *Store) Complete(ctx context.Context, id string) (core.Appointment, error) {
	return s.UpdateStatus(ctx, id, core.StatusCompleted)
}

// Import replaces the whole collection with a backup artifact. A malformed
// artifact leaves the store untouched.
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	items, err := Decode(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.replace(items)
	s.version++
	change := Change{Kind: ChangeRestored, Version: s.version}
	perr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Appointments restored", log.FieldOperation, log.OpRestore, log.FieldCount, len(items))
	return len(items), s.finish(ctx, change, perr)
}

// All returns the appointments in insertion order.
func (s *Store) All() []core.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Appointment, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Get(id string) (core.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return core.Appointment{}, false
	}
	return s.items[i], true
}

// Len reports the number of appointments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increments on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Save returns the portable snapshot of the collection.
func (s *Store) Save() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Encode(s.items)
}

// Snapshot returns the collection together with the version it was read at.
func (s *Store) Snapshot() ([]core.Appointment, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Appointment, len(s.items))
	copy(out, s.items)
	return out, s.version
}

func (s *Store) replace(items []core.Appointment) {
	s.items = make([]core.Appointment, len(items))
	copy(s.items, items)
	s.index = make(map[string]int, len(items))
	for i, a := range s.items {
		s.index[a.ID] = i
	}
}

// persistLocked writes the collection through; callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := Encode(s.items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyAppointments, string(data))
}

func (s *Store) finish(ctx context.Context, change Change, perr error) error {
	change.Persisted = perr == nil
	for _, o := range s.observers {
		o.LedgerChanged(ctx, change)
	}
	if perr != nil {
		s.logger.ErrorContext(ctx, "Write-through failed",
			log.FieldOperation, log.OpPersist,
			log.FieldAppointmentID, change.ID,
			log.FieldError, perr)
		return fmt.Errorf("%w: %w", ErrPersistence, perr)
	}
	return nil
}
