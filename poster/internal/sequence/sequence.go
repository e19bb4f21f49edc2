// Package sequence runs the irreversible page actions: photo
// attachment, select confirmation, saving the draft, and resolving the
// leave-page prompt. Every step verifies its own effect, so callers
// may invoke them repeatedly until confirmed.
package sequence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
)

// Config wires one Sequencer.
type Config struct {
	Page *rod.Page
	// Selects are the select-like field specs to confirm. Usually
	// listing.SelectSpecs of the current record.
	Selects []listing.FieldSpec
	// PhotoPath is the resolved image to attach; empty skips the step.
	PhotoPath string
	// LeaveWindow bounds how long ConfirmLeave waits for the prompt to
	// appear. Default 10s.
	LeaveWindow time.Duration
	Logger      *slog.Logger
}

func (c *Config) defaults() {
	if c.LeaveWindow <= 0 {
		c.LeaveWindow = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// evalFunc runs one page-side script and decodes its JSON result.
type evalFunc func(ctx context.Context, js string, out any, args ...any) error

// Sequencer executes the action steps against one live page. Not safe
// for concurrent use.
type Sequencer struct {
	cfg       Config
	eval      evalFunc
	leavePoll time.Duration

	uploadTried bool
	confirmed   map[string]bool
}

// New creates a Sequencer.
func New(cfg Config) *Sequencer {
	cfg.defaults()
	s := &Sequencer{
		cfg:       cfg,
		leavePoll: 500 * time.Millisecond,
		confirmed: make(map[string]bool),
	}
	s.eval = s.pageEval
	return s
}

func (s *Sequencer) pageEval(ctx context.Context, js string, out any, args ...any) error {
	res, err := s.cfg.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("sequence: eval: %w", err)
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), out); err != nil {
		return fmt.Errorf("sequence: parse eval result: %w", err)
	}
	return nil
}

// EnsureAsset attaches the configured photo. The upload itself happens
// at most once; the returned bool reflects the remove-button
// confirmation, which survives host re-renders.
func (s *Sequencer) EnsureAsset(ctx context.Context) (bool, error) {
	if s.cfg.PhotoPath == "" {
		return true, nil
	}

	var state struct {
		Confirmed  bool `json:"confirmed"`
		HasInput   bool `json:"hasInput"`
		AddVisible bool `json:"addVisible"`
	}
	if err := s.eval(ctx, photoStateJS, &state); err != nil {
		return false, err
	}
	if state.Confirmed {
		return true, nil
	}
	if s.uploadTried {
		// Uploaded but the remove button has not mounted yet; keep
		// reporting unconfirmed and let the caller re-probe.
		return false, nil
	}

	if !state.HasInput && state.AddVisible {
		var clicked struct {
			Clicked bool `json:"clicked"`
		}
		if err := s.eval(ctx, clickAddPhotoJS, &clicked); err != nil {
			return false, err
		}
		if err := sleepCtx(ctx, 500*time.Millisecond); err != nil {
			return false, err
		}
	}

	pg := s.cfg.Page.Context(ctx).Timeout(5 * time.Second)
	input, err := pg.Element(`input[type="file"]`)
	if err != nil {
		return false, fmt.Errorf("sequence: file input not found: %w", err)
	}
	if err := input.SetFiles([]string{s.cfg.PhotoPath}); err != nil {
		return false, fmt.Errorf("sequence: set files: %w", err)
	}
	s.uploadTried = true
	s.cfg.Logger.Info("sequence: photo uploaded", "path", s.cfg.PhotoPath)

	if err := sleepCtx(ctx, time.Second); err != nil {
		return false, err
	}
	if err := s.eval(ctx, photoStateJS, &state); err != nil {
		return false, err
	}
	return state.Confirmed, nil
}

// ConfirmSelects drives a genuine selection on every select-like field
// whose display value does not already match. Absent or hidden
// controls are skipped; a visible control that refuses the selection
// leaves the step unconfirmed for the caller to retry.
func (s *Sequencer) ConfirmSelects(ctx context.Context) (bool, error) {
	all := true
	for _, spec := range s.cfg.Selects {
		if s.confirmed[spec.Name] {
			continue
		}
		ok, err := s.confirmSelect(ctx, spec)
		if err != nil {
			return false, err
		}
		if ok {
			s.confirmed[spec.Name] = true
		} else {
			all = false
		}
	}
	return all, nil
}

type selectState struct {
	Present  bool   `json:"present"`
	Visible  bool   `json:"visible"`
	Display  string `json:"display"`
	Editable bool   `json:"editable"`
	Expanded bool   `json:"expanded"`
}

func (s *Sequencer) confirmSelect(ctx context.Context, spec listing.FieldSpec) (bool, error) {
	var state selectState
	if err := s.eval(ctx, selectStateJS, &state, spec.Label); err != nil {
		return false, err
	}
	if !state.Present || !state.Visible {
		// This form variant does not render the field.
		return true, nil
	}
	if spec.Comparator.Matches(state.Display, spec.Value) {
		return true, nil
	}

	var opened struct {
		Opened bool `json:"opened"`
	}
	if err := s.eval(ctx, openSelectJS, &opened, spec.Label); err != nil {
		return false, err
	}
	if !opened.Opened {
		return false, nil
	}
	if err := sleepCtx(ctx, 400*time.Millisecond); err != nil {
		return false, err
	}

	if state.Editable {
		arg := struct {
			Label string `json:"label"`
			Value string `json:"value"`
		}{Label: spec.Label, Value: spec.Value}
		var typed struct {
			Typed bool `json:"typed"`
		}
		if err := s.eval(ctx, typeIntoSelectJS, &typed, arg); err != nil {
			return false, err
		}
	} else {
		var picked struct {
			Picked  bool `json:"picked"`
			Options int  `json:"options"`
		}
		if err := s.eval(ctx, pickOptionJS, &picked, spec.Value); err != nil {
			return false, err
		}
		if !picked.Picked {
			s.cfg.Logger.Debug("sequence: no matching option",
				"field", spec.Name, "options", picked.Options)
			return false, nil
		}
	}

	if err := sleepCtx(ctx, 400*time.Millisecond); err != nil {
		return false, err
	}
	if err := s.eval(ctx, selectStateJS, &state, spec.Label); err != nil {
		return false, err
	}
	ok := spec.Comparator.Matches(state.Display, spec.Value)
	if ok {
		s.cfg.Logger.Info("sequence: select confirmed",
			"field", spec.Name, "display", state.Display)
	}
	return ok, nil
}

// Save clicks the save-draft affordance and reports whether a target
// was found and clicked.
func (s *Sequencer) Save(ctx context.Context) (bool, error) {
	var out struct {
		Clicked bool `json:"clicked"`
	}
	if err := s.eval(ctx, saveDraftJS, &out); err != nil {
		return false, err
	}
	if out.Clicked {
		s.cfg.Logger.Info("sequence: save draft clicked")
	}
	return out.Clicked, nil
}

// ConfirmLeave polls for the leave-page prompt and clicks it when it
// appears. A prompt that never shows inside the window counts as
// satisfied: the host only raises it when unsaved edits remain.
func (s *Sequencer) ConfirmLeave(ctx context.Context) (bool, error) {
	deadline := time.Now().Add(s.cfg.LeaveWindow)
	sawDialog := false
	for {
		var out struct {
			Dialog  bool `json:"dialog"`
			Clicked bool `json:"clicked"`
		}
		if err := s.eval(ctx, leavePromptJS, &out); err != nil {
			return false, err
		}
		if out.Clicked {
			s.cfg.Logger.Info("sequence: leave prompt confirmed")
			return true, nil
		}
		sawDialog = sawDialog || out.Dialog

		if time.Now().After(deadline) {
			if sawDialog {
				// A dialog is up but the confirm button never matched.
				return false, nil
			}
			s.cfg.Logger.Info("sequence: no leave prompt, nothing unsaved")
			return true, nil
		}
		if err := sleepCtx(ctx, s.leavePoll); err != nil {
			return false, err
		}
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
