package amqp

import (
	"context"

	"glowbook/internal/ledger"
	"glowbook/internal/log"
)

// ChangePublisher is implemented by Client.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, msg *LedgerChangeMessage) error
}

// Notifier forwards ledger changes to the broker. Publishing is best effort:
// the ledger mutation already happened and a failure is only logged.
type Notifier struct {
	pub    ChangePublisher
	logger *log.Logger
}

func NewNotifier(pub ChangePublisher, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Component(log.ComponentAMQP)
	}
	return &Notifier{pub: pub, logger: logger}
}

func (n *Notifier) LedgerChanged(ctx context.Context, c ledger.Change) {
	if n.pub == nil {
		return
	}
	if !c.Persisted {
		// The worker reads from the substrate; nothing new to mirror yet.
		return
	}
	// Detach from request cancellation; the change is already applied.
	if err := n.pub.PublishLedgerChange(context.WithoutCancel(ctx), NewLedgerChangeMessage(c)); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldAppointmentID, c.ID,
			"kind", string(c.Kind),
			log.FieldError, err)
	}
}
