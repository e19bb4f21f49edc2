package poster

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/browser"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/committer"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/locator"
)

// formPath identifies the vehicle form in the tab URL. Navigation
// anywhere else mid-run means the host bounced us and the pass must
// recover first.
const formPath = "/marketplace/create/vehicle"

// pageForm adapts one live tab to the reconciliation loop: readiness
// probe, drift recovery, and the locate+commit+verify pass for a
// single field.
type pageForm struct {
	tab       *browser.Tab
	loc       *locator.Locator
	com       *committer.Committer
	labels    []string
	targetURL string
	logger    *slog.Logger
}

func newPageForm(tab *browser.Tab, rec listing.Listing, specs []listing.FieldSpec, logger *slog.Logger) *pageForm {
	return &pageForm{
		tab:       tab,
		loc:       locator.New(tab.Page, logger),
		com:       committer.New(tab.Page, logger),
		labels:    listing.Labels(specs),
		targetURL: rec.TargetURL,
		logger:    logger,
	}
}

func (f *pageForm) Ready(ctx context.Context) (bool, error) {
	return f.loc.PageReady(ctx, f.labels)
}

func (f *pageForm) Recover(ctx context.Context) error {
	u := f.tab.URL(ctx)
	if strings.Contains(u, formPath) {
		return nil
	}
	f.logger.Warn("poster: tab drifted off the form", "url", u)
	return f.tab.Navigate(ctx, f.targetURL)
}

// Apply runs one field's locate+commit+verify. Result mapping:
// absent field = StatusUnknown; located and matching = StatusVerified;
// written but read-back rejected = StatusCommitted; everything else =
// StatusRequiredUnsatisfied.
func (f *pageForm) Apply(ctx context.Context, spec listing.FieldSpec) (listing.FieldStatus, error) {
	loc, err := f.loc.Resolve(ctx, spec)
	if err != nil {
		if errors.Is(err, locator.ErrNotLocatable) {
			return listing.StatusRequiredUnsatisfied, nil
		}
		return listing.StatusUnknown, err
	}
	if loc == nil {
		return listing.StatusUnknown, nil
	}

	// Skip the write when the control already holds the target value;
	// re-writing a settled field just provokes another re-render.
	if current, err := f.com.Read(ctx, loc); err == nil {
		if committer.Verify(spec, current) == nil {
			return listing.StatusVerified, nil
		}
	}

	readBack, err := f.com.Commit(ctx, loc, spec)
	if err != nil {
		if errors.Is(err, committer.ErrCommitRejected) {
			f.logger.Debug("poster: commit rejected",
				"field", spec.Name, "read_back", readBack)
			return listing.StatusCommitted, nil
		}
		return listing.StatusUnknown, err
	}
	return listing.StatusVerified, nil
}
