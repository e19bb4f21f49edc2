package sequence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
)

// scriptedEval answers each known script with a canned JSON result and
// records the evaluation order.
func scriptedEval(t *testing.T, results map[string]string, calls *[]string) evalFunc {
	t.Helper()
	return func(ctx context.Context, js string, out any, args ...any) error {
		if calls != nil {
			*calls = append(*calls, js)
		}
		res, ok := results[js]
		if !ok {
			t.Fatal("unexpected script evaluated")
		}
		return json.Unmarshal([]byte(res), out)
	}
}

func TestConfirmLeaveNoVisiblePromptSatisfied(t *testing.T) {
	// A dismissed modal stays mounted with display:none; the probe
	// reports no visible prompt and the window must end satisfied.
	var calls []string
	s := New(Config{LeaveWindow: 20 * time.Millisecond})
	s.leavePoll = time.Millisecond
	s.eval = scriptedEval(t, map[string]string{
		leavePromptJS: `{"dialog": false, "clicked": false}`,
	}, &calls)

	ok, err := s.ConfirmLeave(context.Background())
	if err != nil {
		t.Fatalf("ConfirmLeave: %v", err)
	}
	if !ok {
		t.Fatal("absent prompt must count as satisfied")
	}
	if len(calls) == 0 {
		t.Fatal("prompt never probed")
	}
}

func TestConfirmLeaveVisibleUnconfirmedDialogFails(t *testing.T) {
	s := New(Config{LeaveWindow: 20 * time.Millisecond})
	s.leavePoll = time.Millisecond
	s.eval = scriptedEval(t, map[string]string{
		leavePromptJS: `{"dialog": true, "clicked": false}`,
	}, nil)

	ok, err := s.ConfirmLeave(context.Background())
	if err != nil {
		t.Fatalf("ConfirmLeave: %v", err)
	}
	if ok {
		t.Fatal("visible but unconfirmable prompt must not count as satisfied")
	}
}

func TestConfirmLeaveClickStopsPolling(t *testing.T) {
	var calls []string
	s := New(Config{LeaveWindow: time.Second})
	s.eval = scriptedEval(t, map[string]string{
		leavePromptJS: `{"dialog": true, "clicked": true}`,
	}, &calls)

	ok, err := s.ConfirmLeave(context.Background())
	if err != nil {
		t.Fatalf("ConfirmLeave: %v", err)
	}
	if !ok {
		t.Fatal("clicked prompt not reported satisfied")
	}
	if len(calls) != 1 {
		t.Errorf("probes after click = %d, want 1", len(calls))
	}
}

func TestSaveReportsClick(t *testing.T) {
	s := New(Config{})
	s.eval = scriptedEval(t, map[string]string{
		saveDraftJS: `{"clicked": true}`,
	}, nil)

	ok, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !ok {
		t.Fatal("clicked save not reported")
	}
}

func TestEnsureAssetConfirmedByRemoveButton(t *testing.T) {
	s := New(Config{PhotoPath: "/tmp/car.jpg"})
	s.eval = scriptedEval(t, map[string]string{
		photoStateJS: `{"confirmed": true, "hasInput": true, "addVisible": false}`,
	}, nil)

	ok, err := s.EnsureAsset(context.Background())
	if err != nil {
		t.Fatalf("EnsureAsset: %v", err)
	}
	if !ok {
		t.Fatal("remove button present but attachment not confirmed")
	}
	if s.uploadTried {
		t.Error("upload attempted despite existing attachment")
	}
}

func TestEnsureAssetNoPhotoConfigured(t *testing.T) {
	var calls []string
	s := New(Config{})
	s.eval = scriptedEval(t, nil, &calls)

	ok, err := s.EnsureAsset(context.Background())
	if err != nil {
		t.Fatalf("EnsureAsset: %v", err)
	}
	if !ok {
		t.Fatal("nothing to attach must count as satisfied")
	}
	if len(calls) != 0 {
		t.Errorf("page touched %d times with no photo configured, want 0", len(calls))
	}
}

func TestConfirmSelectsSkipsAbsentField(t *testing.T) {
	spec := listing.FieldSpec{
		Name: "vehicle_type", Label: "Jenis kendaraan",
		Value: "Mobil/Truk", Comparator: listing.CompareSubstring, Select: true,
	}
	s := New(Config{Selects: []listing.FieldSpec{spec}})
	s.eval = scriptedEval(t, map[string]string{
		selectStateJS: `{"present": false}`,
	}, nil)

	ok, err := s.ConfirmSelects(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSelects: %v", err)
	}
	if !ok {
		t.Fatal("absent select must not block confirmation")
	}
}

func TestConfirmSelectsMatchingDisplaySkipsDriving(t *testing.T) {
	spec := listing.FieldSpec{
		Name: "vehicle_type", Label: "Jenis kendaraan",
		Value: "Mobil/Truk", Comparator: listing.CompareSubstring, Select: true,
	}
	var calls []string
	s := New(Config{Selects: []listing.FieldSpec{spec}})
	s.eval = scriptedEval(t, map[string]string{
		selectStateJS: `{"present": true, "visible": true, "display": "Mobil/Truk", "editable": false}`,
	}, &calls)

	ok, err := s.ConfirmSelects(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSelects: %v", err)
	}
	if !ok {
		t.Fatal("matching display not confirmed")
	}
	for _, js := range calls {
		if js == openSelectJS || js == pickOptionJS || js == typeIntoSelectJS {
			t.Fatal("combobox driven despite matching display value")
		}
	}
	// Confirmation is remembered; later rounds must not re-probe.
	calls = calls[:0]
	if ok, _ := s.ConfirmSelects(context.Background()); !ok {
		t.Fatal("confirmation not remembered")
	}
	if len(calls) != 0 {
		t.Errorf("re-probed %d times after confirmation, want 0", len(calls))
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.LeaveWindow != 10*time.Second {
		t.Errorf("LeaveWindow = %v, want 10s", c.LeaveWindow)
	}
	if c.Logger == nil {
		t.Error("Logger not defaulted")
	}
}
