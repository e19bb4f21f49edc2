// Package committer writes a target value into a located control
// through the host framework's observation path and verifies the
// result by immediate read-back.
package committer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/locator"
)

// ErrCommitRejected means the value was written but read-back
// verification failed — the comparator did not match, or the
// numeric guard fired. Retryable on the next pass.
var ErrCommitRejected = errors.New("committer: read-back verification failed")

// Committer commits field values on one live page.
type Committer struct {
	page   *rod.Page
	logger *slog.Logger
}

// New creates a Committer for the given page.
func New(page *rod.Page, logger *slog.Logger) *Committer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Committer{page: page, logger: logger}
}

// Commit writes the spec's value into the located control, re-reads it,
// and verifies under the spec's comparator. The read-back value is
// returned for diagnostics. On verification failure the error wraps
// ErrCommitRejected.
func (c *Committer) Commit(ctx context.Context, loc *locator.Located, spec listing.FieldSpec) (string, error) {
	arg := struct {
		XPath     string `json:"xpath"`
		Kind      string `json:"kind"`
		Value     string `json:"value"`
		WrapperID string `json:"wrapperId"`
	}{
		XPath: loc.XPath,
		Kind:  string(loc.Kind),
		Value: spec.Value,
	}
	// When the field got here via the signature strategy the wrapper is
	// created fresh; give it the first candidate id so id resolution
	// works on the next pass.
	if loc.Strategy == listing.LocateSignature {
		for _, cand := range spec.Locators {
			if cand.Kind == listing.LocateID {
				arg.WrapperID = cand.Value
				break
			}
		}
	}

	res, err := c.page.Context(ctx).Eval(commitJS, arg)
	if err != nil {
		return "", fmt.Errorf("committer: commit %s: %w", spec.Name, err)
	}

	var out struct {
		OK    bool   `json:"ok"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return "", fmt.Errorf("committer: parse commit result for %s: %w", spec.Name, err)
	}
	if !out.OK {
		// The control vanished between locate and commit; the host
		// re-rendered underneath us. Retryable.
		return "", fmt.Errorf("committer: %s: control gone before write: %w",
			spec.Name, ErrCommitRejected)
	}

	return out.Value, Verify(spec, out.Value)
}

// Read returns the current value of the located control without
// writing.
func (c *Committer) Read(ctx context.Context, loc *locator.Located) (string, error) {
	res, err := c.page.Context(ctx).Eval(readJS, loc.XPath)
	if err != nil {
		return "", fmt.Errorf("committer: read: %w", err)
	}
	var out struct {
		OK    bool   `json:"ok"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return "", fmt.Errorf("committer: parse read result: %w", err)
	}
	if !out.OK {
		return "", fmt.Errorf("committer: control gone: %w", ErrCommitRejected)
	}
	return out.Value, nil
}

// Verify applies the spec's comparator and the numeric guard to a
// read-back value. The guard runs first: a descriptive-text field whose
// read-back is purely numeric is rejected regardless of comparator
// outcome, because an auto-suggest control substituted its internal id
// for the typed text.
func Verify(spec listing.FieldSpec, readBack string) error {
	if spec.DescriptiveText && listing.NumericOnly(readBack) {
		return fmt.Errorf("committer: %s: numeric read-back %q for descriptive field: %w",
			spec.Name, readBack, ErrCommitRejected)
	}
	if !spec.Comparator.Matches(readBack, spec.Value) {
		return fmt.Errorf("committer: %s: read-back %q does not match %q under %s: %w",
			spec.Name, readBack, spec.Value, spec.Comparator, ErrCommitRejected)
	}
	return nil
}
