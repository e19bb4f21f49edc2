// Package reconcile drives one record to a stable, fully committed
// state: repeated locate+commit+verify passes over every field spec,
// a stability counter absorbing the host's asynchronous re-renders,
// and gated hand-off to the irreversible actions.
//
// The machine talks to the page only through the Form and Actions
// interfaces, so it is independent of the browser layer and of host
// rendering quirks.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
)

// ErrDeadlineExceeded means the record's wall-clock budget elapsed
// before SUCCEEDED. Terminal for the current record only; the caller
// moves on to the next record.
var ErrDeadlineExceeded = errors.New("reconcile: record deadline exceeded")

// State of the per-record machine.
type State int

const (
	StateInitializing State = iota
	StatePatching
	StateStabilizing
	StateFinalizing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StatePatching:
		return "patching"
	case StateStabilizing:
		return "stabilizing"
	case StateFinalizing:
		return "finalizing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Form is the page-side surface of one reconciliation pass.
type Form interface {
	// Ready reports whether at least one expected field label is
	// observable — the page-ready signal.
	Ready(ctx context.Context) (bool, error)
	// Recover brings the page back to the form when the host navigated
	// away mid-run. Called at the start of every pass; errors are
	// absorbed as a failed pass.
	Recover(ctx context.Context) error
	// Apply runs locate+commit+verify for one spec. It returns
	// StatusVerified on success, StatusRequiredUnsatisfied when the
	// field exists but could not be committed, and StatusUnknown when
	// the field is absent on this form variant (not required).
	Apply(ctx context.Context, spec listing.FieldSpec) (listing.FieldStatus, error)
}

// Actions is the sequencer surface the machine gates. Every method is
// idempotent and re-verifies its own effect.
type Actions interface {
	// EnsureAsset attaches the photo at most once and reports whether
	// the attachment is confirmed.
	EnsureAsset(ctx context.Context) (bool, error)
	// ConfirmSelects drives a genuine selection event on every
	// select-like field and reports whether all are confirmed.
	ConfirmSelects(ctx context.Context) (bool, error)
	// Save triggers the save affordance and reports whether it was
	// confirmed clicked.
	Save(ctx context.Context) (bool, error)
	// ConfirmLeave resolves the destructive-navigation prompt: clicked
	// when present, satisfied when it never appears.
	ConfirmLeave(ctx context.Context) (bool, error)
}

// Config tunes one machine.
type Config struct {
	Specs []listing.FieldSpec
	// StabilityThreshold is the number of consecutive fully-successful
	// passes required before actions run. Default 2.
	StabilityThreshold int
	// Deadline is the per-record wall-clock budget. Default 180s.
	Deadline time.Duration
	// Tick is the pause between passes. Default 1.5s.
	Tick   time.Duration
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.StabilityThreshold <= 0 {
		c.StabilityThreshold = 2
	}
	if c.Deadline <= 0 {
		c.Deadline = 180 * time.Second
	}
	if c.Tick <= 0 {
		c.Tick = 1500 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Machine is the per-record reconciliation state machine. Not safe for
// concurrent use; each record gets its own Machine.
type Machine struct {
	form    Form
	actions Actions
	cfg     Config

	state     State
	attempts  int
	stability int
	fields    map[string]listing.FieldStatus

	assetAttached    bool
	selectsConfirmed bool
	saveConfirmed    bool
	leaveConfirmed   bool
}

// New creates a Machine over fresh per-record state.
func New(form Form, actions Actions, cfg Config) *Machine {
	cfg.defaults()
	return &Machine{
		form:    form,
		actions: actions,
		cfg:     cfg,
		state:   StateInitializing,
		fields:  make(map[string]listing.FieldStatus),
	}
}

// State returns the current machine state.
func (m *Machine) State() State { return m.state }

// Run drives the machine until SUCCEEDED or the deadline expires. On
// deadline it returns the diagnostic snapshot together with
// ErrDeadlineExceeded; the snapshot names every unsatisfied check.
func (m *Machine) Run(ctx context.Context) (listing.Diagnostics, error) {
	deadline := time.Now().Add(m.cfg.Deadline)
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		m.step(runCtx)

		if m.state == StateSucceeded {
			return m.Snapshot(), nil
		}
		if time.Now().After(deadline) || runCtx.Err() != nil {
			m.state = StateFailed
			snap := m.Snapshot()
			return snap, fmt.Errorf("reconcile: %v unsatisfied after %d attempts: %w",
				snap.Failed(), m.attempts, ErrDeadlineExceeded)
		}

		if err := sleepCtx(runCtx, m.cfg.Tick); err != nil {
			m.state = StateFailed
			return m.Snapshot(), fmt.Errorf("reconcile: %w", ErrDeadlineExceeded)
		}
	}
}

// step advances the machine by one iteration. Transient errors from the
// form or the actions are absorbed: they fail the current pass and the
// next iteration retries from scratch.
func (m *Machine) step(ctx context.Context) {
	switch m.state {
	case StateInitializing:
		ready, err := m.form.Ready(ctx)
		if err != nil {
			m.cfg.Logger.Debug("reconcile: ready probe failed", "error", err)
			return
		}
		if ready {
			m.cfg.Logger.Info("reconcile: page ready", "attempts", m.attempts)
			m.state = StatePatching
		}

	case StatePatching:
		m.attempts++
		m.runPass(ctx)

		if m.stability >= m.cfg.StabilityThreshold {
			// Selection identity is only enforced once the DOM is
			// stable; injecting into a mid-render select is wasted work.
			confirmed, err := m.actions.ConfirmSelects(ctx)
			if err != nil {
				m.cfg.Logger.Debug("reconcile: confirm selects", "error", err)
			}
			m.selectsConfirmed = confirmed
		}

		if m.stability >= m.cfg.StabilityThreshold && m.assetAttached && m.selectsConfirmed {
			m.cfg.Logger.Info("reconcile: stabilized",
				"attempts", m.attempts, "stability", m.stability)
			m.state = StateStabilizing
		}

	case StateStabilizing:
		ok, err := m.actions.Save(ctx)
		if err != nil {
			m.cfg.Logger.Debug("reconcile: save", "error", err)
			return
		}
		if ok {
			m.saveConfirmed = true
			m.state = StateFinalizing
		}

	case StateFinalizing:
		ok, err := m.actions.ConfirmLeave(ctx)
		if err != nil {
			m.cfg.Logger.Debug("reconcile: confirm leave", "error", err)
			return
		}
		if ok {
			m.leaveConfirmed = true
			m.state = StateSucceeded
		}
	}
}

// runPass executes one full scan over all field specs. Pass success is
// the logical AND over every required field; the stability counter
// increments on success and resets to zero on any failure.
func (m *Machine) runPass(ctx context.Context) {
	if err := m.form.Recover(ctx); err != nil {
		m.cfg.Logger.Debug("reconcile: recover failed", "error", err)
		m.stability = 0
		return
	}

	if !m.assetAttached {
		attached, err := m.actions.EnsureAsset(ctx)
		if err != nil {
			m.cfg.Logger.Debug("reconcile: asset attach retry", "error", err)
		}
		m.assetAttached = attached
	}

	passOK := true
	for _, spec := range m.cfg.Specs {
		status, err := m.form.Apply(ctx, spec)
		if err != nil {
			// Transient host-rendering failures count as a failed pass
			// for this field, never as a fatal condition.
			m.cfg.Logger.Debug("reconcile: field pass failed",
				"field", spec.Name, "error", err)
			status = listing.StatusRequiredUnsatisfied
		}
		m.fields[spec.Name] = status
		if status == listing.StatusRequiredUnsatisfied || status == listing.StatusCommitted {
			passOK = false
		}
	}

	if passOK {
		m.stability++
	} else {
		m.stability = 0
	}
}

// Snapshot captures the diagnostic state: which sub-checks passed and
// every field's last status.
func (m *Machine) Snapshot() listing.Diagnostics {
	fields := make(map[string]listing.FieldStatus, len(m.fields))
	for k, v := range m.fields {
		fields[k] = v
	}
	return listing.Diagnostics{
		DOMSuccess:        m.stability >= m.cfg.StabilityThreshold,
		AssetAttached:     m.assetAttached,
		SelectsConfirmed:  m.selectsConfirmed,
		SaveConfirmed:     m.saveConfirmed,
		NavigationConfirm: m.leaveConfirmed,
		Fields:            fields,
		Attempts:          m.attempts,
		Stability:         m.stability,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
