package vault

import (
	"context"

	"glowbook/internal/log"
)

// PasscodeSource yields the stored passcode; empty means no lock is configured.
type PasscodeSource interface {
	Passcode() string
}

// Recorder receives gate outcomes, e.g. for metrics.
type Recorder interface {
	VaultEvent(action Action, outcome Outcome)
}

type Outcome string

const (
	OutcomeGranted   Outcome = "granted"
	OutcomeChallenge Outcome = "challenge"
	OutcomeDenied    Outcome = "denied"
	OutcomeLocked    Outcome = "locked"
)

// Decision is the result of RequestAccess.
type Decision int

const (
	// Granted means the caller runs the action now.
	Granted Decision = iota
	// Challenge means the action was recorded as pending until a passcode is submitted.
	Challenge
)

func (d Decision) String() string {
	if d == Granted {
		return string(OutcomeGranted)
	}
	return string(OutcomeChallenge)
}

type Gate struct {
	src      PasscodeSource
	verifier Verifier
	recorder Recorder
	logger   *log.Logger
}

func NewGate(src PasscodeSource, verifier Verifier, recorder Recorder, logger *log.Logger) *Gate {
	if verifier == nil {
		verifier = PlainVerifier{}
	}
	if logger == nil {
		logger = log.Component(log.ComponentVault)
	}
	return &Gate{src: src, verifier: verifier, recorder: recorder, logger: logger}
}

// RequestAccess grants action immediately when no passcode is configured or
// the session is already unlocked; otherwise it records action as pending.
// A granted reveal unlocks the session.
func (g *Gate) RequestAccess(ctx context.Context, s *Session, action Action) (Decision, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return Challenge, err
	}
	locked := g.src.Passcode() != ""

	s.mu.Lock()
	if !locked || s.unlocked {
		if action == ActionReveal {
			s.unlocked = true
		}
		s.mu.Unlock()
		g.record(ctx, action, OutcomeGranted, log.OpGrant)
		return Granted, nil
	}
	s.pending = action
	s.mu.Unlock()

	g.record(ctx, action, OutcomeChallenge, log.OpChallenge)
	return Challenge, nil
}

// SubmitPasscode answers the pending challenge. On success the pending
// action is cleared and returned for the caller to run; only a reveal unlocks
// the session. A wrong passcode returns ErrAccessDenied and keeps the pending
// action so the owner can retry.
func (g *Gate) SubmitPasscode(ctx context.Context, s *Session, input string) (Action, error) {
	stored := g.src.Passcode()

	s.mu.Lock()
	action := s.pending
	if action == "" {
		s.mu.Unlock()
		return "", ErrNoPendingAction
	}
	if stored != "" && !g.verifier.Verify(stored, input) {
		s.mu.Unlock()
		g.record(ctx, action, OutcomeDenied, log.OpDeny)
		return action, ErrAccessDenied
	}
	s.pending = ""
	if action == ActionReveal {
		s.unlocked = true
	}
	s.mu.Unlock()

	g.record(ctx, action, OutcomeGranted, log.OpGrant)
	return action, nil
}

// LockSession drops the session-wide unlock.
func (g *Gate) LockSession(ctx context.Context, s *Session) {
	s.mu.Lock()
	s.unlocked = false
	s.mu.Unlock()
	g.record(ctx, "", OutcomeLocked, log.OpLock)
}

// Allowed reports whether a gated operation may run without a challenge.
// It never records a pending action.
func (g *Gate) Allowed(s *Session) bool {
	return g.src.Passcode() == "" || s.Unlocked()
}

func (g *Gate) record(ctx context.Context, action Action, outcome Outcome, op string) {
	if g.recorder != nil {
		g.recorder.VaultEvent(action, outcome)
	}
	if outcome == OutcomeDenied {
		g.logger.WarnContext(ctx, "Vault passcode rejected", log.FieldOperation, op, log.FieldAction, string(action))
		return
	}
	g.logger.InfoContext(ctx, "Vault "+string(outcome), log.FieldOperation, op, log.FieldAction, string(action))
}
