// Package locator resolves a FieldSpec to zero-or-one addressable
// control on the live page.
//
// One ordered-strategy resolver serves every field: exact id match,
// then the labelled-container structural match, then the full
// class-signature match with the empty-content heuristic. Each field's
// candidate list comes from its FieldSpec, so there is no bespoke code
// path per field.
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
)

// ErrNotLocatable means the field's label exists on this render but no
// usable control was found inside any candidate. The field counts as
// required-unsatisfied for the pass; the next pass retries from
// scratch.
var ErrNotLocatable = errors.New("locator: label present but no usable control")

// ControlKind classifies the resolved control.
type ControlKind string

const (
	KindInput    ControlKind = "input"
	KindTextArea ControlKind = "textarea"
	// KindSpan is the read-only display span of a select-style field.
	KindSpan ControlKind = "span"
)

// Located addresses one resolved control.
type Located struct {
	// XPath re-addresses the control in later evaluations. The path is
	// only valid until the host re-renders; every pass resolves anew.
	XPath   string
	Kind    ControlKind
	Visible bool
	// Strategy records which locator kind produced the match.
	Strategy listing.LocatorKind
}

// Locator resolves field specifications against one live page.
type Locator struct {
	page   *rod.Page
	logger *slog.Logger
}

// New creates a Locator for the given page.
func New(page *rod.Page, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{page: page, logger: logger}
}

// PageReady reports whether at least one expected field label is
// observable. False is a wait condition, never an error condition.
func (l *Locator) PageReady(ctx context.Context, labels []string) (bool, error) {
	res, err := l.page.Context(ctx).Eval(pageReadyJS, labels)
	if err != nil {
		return false, fmt.Errorf("locator: page-ready probe: %w", err)
	}
	return res.Value.Bool(), nil
}

// Resolve tries the spec's locator candidates in order and returns the
// first usable control. A nil Located with nil error means the field is
// absent on this form variant (label nowhere on the page) and is not
// required. ErrNotLocatable means the label was found but no candidate
// yielded a usable control.
func (l *Locator) Resolve(ctx context.Context, spec listing.FieldSpec) (*Located, error) {
	type jsLocator struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}
	arg := struct {
		Label    string      `json:"label"`
		Locators []jsLocator `json:"locators"`
	}{Label: spec.Label}
	for _, loc := range spec.Locators {
		arg.Locators = append(arg.Locators, jsLocator{Kind: string(loc.Kind), Value: loc.Value})
	}

	res, err := l.page.Context(ctx).Eval(resolveJS, arg)
	if err != nil {
		return nil, fmt.Errorf("locator: resolve %s: %w", spec.Name, err)
	}

	var out struct {
		Found        bool   `json:"found"`
		LabelPresent bool   `json:"labelPresent"`
		XPath        string `json:"xpath"`
		Kind         string `json:"kind"`
		Visible      bool   `json:"visible"`
		Strategy     string `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, fmt.Errorf("locator: parse resolve result for %s: %w", spec.Name, err)
	}

	if !out.Found {
		if out.LabelPresent {
			l.logger.Debug("locator: field not locatable",
				"field", spec.Name, "label", spec.Label)
			return nil, fmt.Errorf("locator: %s: %w", spec.Name, ErrNotLocatable)
		}
		// Label nowhere on the page: absent for this variant, not an
		// error and not a field-level concern.
		return nil, nil
	}

	return &Located{
		XPath:    out.XPath,
		Kind:     ControlKind(out.Kind),
		Visible:  out.Visible,
		Strategy: listing.LocatorKind(out.Strategy),
	}, nil
}
