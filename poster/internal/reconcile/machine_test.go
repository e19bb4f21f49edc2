package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
)

type fakeForm struct {
	readyAfter int // Ready probes before reporting true
	probes     int

	// apply returns the status for a field on a given pass.
	apply func(pass int, spec listing.FieldSpec) (listing.FieldStatus, error)
	pass  int

	recoverErr error
	recovers   int
}

func (f *fakeForm) Ready(ctx context.Context) (bool, error) {
	f.probes++
	return f.probes > f.readyAfter, nil
}

// Recover runs once at the start of every pass, so the fake uses it as
// the pass boundary.
func (f *fakeForm) Recover(ctx context.Context) error {
	f.recovers++
	f.pass = f.recovers
	return f.recoverErr
}

func (f *fakeForm) Apply(ctx context.Context, spec listing.FieldSpec) (listing.FieldStatus, error) {
	if f.apply == nil {
		return listing.StatusVerified, nil
	}
	return f.apply(f.pass, spec)
}

type fakeActions struct {
	assetCalls   int
	assetAfter   int // calls before attach succeeds
	selectCalls  int
	selectsOK    bool
	saveCalls    int
	saveOK       bool
	leaveCalls   int
	leaveOK      bool
	leaveErrOnce error
}

func (a *fakeActions) EnsureAsset(ctx context.Context) (bool, error) {
	a.assetCalls++
	return a.assetCalls > a.assetAfter, nil
}

func (a *fakeActions) ConfirmSelects(ctx context.Context) (bool, error) {
	a.selectCalls++
	return a.selectsOK, nil
}

func (a *fakeActions) Save(ctx context.Context) (bool, error) {
	a.saveCalls++
	return a.saveOK, nil
}

func (a *fakeActions) ConfirmLeave(ctx context.Context) (bool, error) {
	a.leaveCalls++
	if a.leaveErrOnce != nil {
		err := a.leaveErrOnce
		a.leaveErrOnce = nil
		return false, err
	}
	return a.leaveOK, nil
}

func fastConfig(specs []listing.FieldSpec) Config {
	return Config{
		Specs:              specs,
		StabilityThreshold: 2,
		Deadline:           2 * time.Second,
		Tick:               time.Millisecond,
	}
}

func twoSpecs() []listing.FieldSpec {
	return []listing.FieldSpec{
		{Name: "price", Label: "Harga", Value: "200000"},
		{Name: "model", Label: "Model", Value: "Avanza", DescriptiveText: true},
	}
}

func TestRunSucceedsAfterStability(t *testing.T) {
	form := &fakeForm{}
	actions := &fakeActions{selectsOK: true, saveOK: true, leaveOK: true}
	m := New(form, actions, fastConfig(twoSpecs()))

	diag, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.State() != StateSucceeded {
		t.Fatalf("state = %v, want succeeded", m.State())
	}
	if !diag.OK() {
		t.Fatalf("diagnostics not clean: %v", diag.Failed())
	}
	if diag.Stability < 2 {
		t.Errorf("stability = %d, want >= 2", diag.Stability)
	}
	if diag.Attempts < 2 {
		t.Errorf("attempts = %d, want >= 2", diag.Attempts)
	}
}

func TestStabilityResetsOnFailedPass(t *testing.T) {
	// Passes: 1 ok, 2 model unsatisfied, then ok forever. The counter
	// must restart from zero after the failing pass.
	form := &fakeForm{}
	form.apply = func(pass int, spec listing.FieldSpec) (listing.FieldStatus, error) {
		if pass == 2 && spec.Name == "model" {
			return listing.StatusRequiredUnsatisfied, nil
		}
		return listing.StatusVerified, nil
	}
	actions := &fakeActions{selectsOK: true, saveOK: true, leaveOK: true}
	m := New(form, actions, fastConfig(twoSpecs()))

	diag, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 1 good + 1 bad + 2 good to reach the threshold again.
	if diag.Attempts < 4 {
		t.Errorf("attempts = %d, want >= 4 after reset", diag.Attempts)
	}
}

func TestStepGrowsStabilityOnCleanPasses(t *testing.T) {
	form := &fakeForm{}
	form.apply = func(pass int, spec listing.FieldSpec) (listing.FieldStatus, error) {
		if pass == 1 {
			return listing.StatusRequiredUnsatisfied, nil
		}
		return listing.StatusVerified, nil
	}
	actions := &fakeActions{selectsOK: true, saveOK: true, leaveOK: true}
	m := New(form, actions, fastConfig(twoSpecs()))

	ctx := context.Background()
	m.step(ctx) // initializing -> patching
	if m.State() != StatePatching {
		t.Fatalf("state = %v, want patching", m.State())
	}
	m.step(ctx) // pass 1: unsatisfied
	if m.stability != 0 {
		t.Errorf("stability after failing pass = %d, want 0", m.stability)
	}
	m.step(ctx) // pass 2: verified
	if m.stability != 1 {
		t.Errorf("stability after clean pass = %d, want 1", m.stability)
	}
	m.step(ctx) // pass 3: verified, threshold reached
	if m.stability != 2 {
		t.Errorf("stability = %d, want 2", m.stability)
	}
	if m.State() != StateStabilizing {
		t.Errorf("state = %v, want stabilizing once threshold, asset and selects hold", m.State())
	}
}

func TestAbsentFieldDoesNotBlockStability(t *testing.T) {
	form := &fakeForm{}
	form.apply = func(pass int, spec listing.FieldSpec) (listing.FieldStatus, error) {
		if spec.Name == "model" {
			return listing.StatusUnknown, nil // absent on this variant
		}
		return listing.StatusVerified, nil
	}
	actions := &fakeActions{selectsOK: true, saveOK: true, leaveOK: true}
	m := New(form, actions, fastConfig(twoSpecs()))

	diag, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := diag.Fields["model"]; got != listing.StatusUnknown {
		t.Errorf("model status = %v, want unknown", got)
	}
	if !diag.OK() {
		t.Errorf("absent field must not fail diagnostics: %v", diag.Failed())
	}
}

func TestDeadlineNamesFailedChecks(t *testing.T) {
	form := &fakeForm{}
	form.apply = func(pass int, spec listing.FieldSpec) (listing.FieldStatus, error) {
		if spec.Name == "model" {
			return listing.StatusRequiredUnsatisfied, nil
		}
		return listing.StatusVerified, nil
	}
	actions := &fakeActions{selectsOK: true, saveOK: true, leaveOK: true}
	cfg := fastConfig(twoSpecs())
	cfg.Deadline = 30 * time.Millisecond
	m := New(form, actions, cfg)

	diag, err := m.Run(context.Background())
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("err = %v, want ErrDeadlineExceeded", err)
	}
	if m.State() != StateFailed {
		t.Errorf("state = %v, want failed", m.State())
	}
	failed := diag.Failed()
	want := map[string]bool{"dom-success": false, "field:model": false, "save-confirmed": false}
	for _, name := range failed {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("failed checks %v missing %q", failed, name)
		}
	}
}

func TestTransientApplyErrorAbsorbed(t *testing.T) {
	form := &fakeForm{}
	calls := 0
	form.apply = func(pass int, spec listing.FieldSpec) (listing.FieldStatus, error) {
		calls++
		if calls == 1 {
			return listing.StatusUnknown, errors.New("node detached")
		}
		return listing.StatusVerified, nil
	}
	actions := &fakeActions{selectsOK: true, saveOK: true, leaveOK: true}
	m := New(form, actions, fastConfig(twoSpecs()))

	diag, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("transient error must not abort the run: %v", err)
	}
	if !diag.OK() {
		t.Errorf("diagnostics not clean after recovery: %v", diag.Failed())
	}
}

func TestAssetAttachRetriedUntilConfirmed(t *testing.T) {
	form := &fakeForm{}
	actions := &fakeActions{assetAfter: 3, selectsOK: true, saveOK: true, leaveOK: true}
	m := New(form, actions, fastConfig(twoSpecs()))

	diag, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !diag.AssetAttached {
		t.Fatal("asset not attached")
	}
	if actions.assetCalls != 4 {
		t.Errorf("asset attach calls = %d, want 4 (3 misses then success)", actions.assetCalls)
	}
	// Once attached, later passes must not re-trigger attachment.
	if m.assetAttached != true {
		t.Error("assetAttached flag lost")
	}
}

func TestSelectsGateHoldsMachineInPatching(t *testing.T) {
	form := &fakeForm{}
	actions := &fakeActions{selectsOK: false, saveOK: true, leaveOK: true}
	cfg := fastConfig(twoSpecs())
	cfg.Deadline = 40 * time.Millisecond
	m := New(form, actions, cfg)

	diag, err := m.Run(context.Background())
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("err = %v, want deadline with selects unconfirmed", err)
	}
	if diag.SelectsConfirmed {
		t.Error("selects reported confirmed")
	}
	if actions.saveCalls != 0 {
		t.Errorf("save called %d times before selects confirmed, want 0", actions.saveCalls)
	}
}

func TestLeaveErrorRetriedNextTick(t *testing.T) {
	form := &fakeForm{}
	actions := &fakeActions{
		selectsOK:    true,
		saveOK:       true,
		leaveOK:      true,
		leaveErrOnce: errors.New("dialog probe raced a re-render"),
	}
	m := New(form, actions, fastConfig(twoSpecs()))

	diag, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !diag.NavigationConfirm {
		t.Fatal("navigation not confirmed")
	}
	if actions.leaveCalls != 2 {
		t.Errorf("leave calls = %d, want 2 (error then success)", actions.leaveCalls)
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.StabilityThreshold != 2 {
		t.Errorf("StabilityThreshold = %d, want 2", c.StabilityThreshold)
	}
	if c.Deadline != 180*time.Second {
		t.Errorf("Deadline = %v, want 180s", c.Deadline)
	}
	if c.Tick != 1500*time.Millisecond {
		t.Errorf("Tick = %v, want 1.5s", c.Tick)
	}
	if c.Logger == nil {
		t.Error("Logger not defaulted")
	}
}
