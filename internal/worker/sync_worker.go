// Package worker mirrors ledger changes into the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"time"

	"glowbook/internal/amqp"
	"glowbook/internal/core"
	"glowbook/internal/ledger"
	"glowbook/internal/log"
	"glowbook/internal/sheets"
	"glowbook/internal/storage"
)

// Recorder receives sync counts, e.g. for metrics.
type Recorder interface {
	RecordRowsSynced(n int)
	RecordSyncFailure()
}

// SyncWorker reads the collection from the durable substrate on every message,
// so a message only has to say which appointment changed.
type SyncWorker struct {
	kv       storage.KV
	mirror   sheets.Mirror
	recorder Recorder
	logger   *log.Logger
}

func NewSyncWorker(kv storage.KV, mirror sheets.Mirror, recorder Recorder, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Component(log.ComponentWorker)
	}
	return &SyncWorker{kv: kv, mirror: mirror, recorder: recorder, logger: logger}
}

func (w *SyncWorker) load(ctx context.Context) ([]core.Appointment, error) {
	raw, ok, err := w.kv.Get(ctx, storage.KeyAppointments)
	if err != nil {
		return nil, fmt.Errorf("read appointments: %w", err)
	}
	if !ok {
		return []core.Appointment{}, nil
	}
	return ledger.Decode([]byte(raw))
}

// HandleChange mirrors one ledger change. Unknown ids are skipped without
// error so the message is acknowledged; a restore rewrites the whole sheet.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	if msg.Kind == ledger.ChangeRestored {
		return w.FullSync(ctx)
	}

	apps, err := w.load(ctx)
	if err != nil {
		return err
	}

	for _, a := range apps {
		if a.ID != msg.ID {
			continue
		}
		if err := w.mirror.Upsert(ctx, a); err != nil {
			w.failed()
			return fmt.Errorf("upsert appointment row: %w", err)
		}
		w.synced(1)
		w.logger.InfoContext(ctx, "Appointment mirrored",
			log.FieldOperation, log.OpSync,
			log.FieldAppointmentID, a.ID,
			log.FieldStatus, string(a.Status))
		return nil
	}

	w.logger.WarnContext(ctx, "Skipping change for unknown appointment",
		log.FieldAppointmentID, msg.ID,
		"kind", string(msg.Kind))
	return nil
}

// FullSync rewrites the sheet from the current collection.
func (w *SyncWorker) FullSync(ctx context.Context) error {
	apps, err := w.load(ctx)
	if err != nil {
		return err
	}
	if err := w.mirror.Replace(ctx, apps); err != nil {
		w.failed()
		return fmt.Errorf("replace sheet rows: %w", err)
	}
	w.synced(len(apps))
	w.logger.InfoContext(ctx, "Full mirror sync completed", log.FieldOperation, log.OpSync, log.FieldCount, len(apps))
	return nil
}

// RunPeriodic calls FullSync every interval until ctx ends. Errors are logged
// and the loop continues.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.FullSync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
			}
		}
	}
}

func (w *SyncWorker) synced(n int) {
	if w.recorder != nil {
		w.recorder.RecordRowsSynced(n)
	}
}

func (w *SyncWorker) failed() {
	if w.recorder != nil {
		w.recorder.RecordSyncFailure()
	}
}
