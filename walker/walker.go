// Package walker implements the depth-bounded traversal of the FRED
// category hierarchy. It walks depth-first through the caching fetcher,
// materializes category and series nodes into the tree, and aggregates
// rollup counts that include server-reported totals for series that were
// never materialized.
package walker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fred-catalog/fred"
	"fred-catalog/tree"
)

const (
	defaultMaxDepth    = 2
	defaultSeriesLimit = 100

	// Long notes are truncated for display; the raw value stays untouched
	// in the cache.
	notesDisplayLen = 100
	notesSanityCap  = 9999
)

// Catalog supplies the direct children of a category. Implementations never
// fail: any remote or parse problem yields an empty page.
type Catalog interface {
	ChildCategories(ctx context.Context, categoryID int64) fred.CategoryPage
	ChildSeries(ctx context.Context, categoryID int64, limit int) fred.SeriesPage
}

// Stats accumulates traversal totals. Series counts use server-reported
// totals, so they can exceed the number of nodes in the tree.
type Stats struct {
	Categories int64
	Series     int64
}

// Walker traverses the hierarchy and builds the annotated tree.
type Walker struct {
	catalog     Catalog
	tree        *tree.Tree
	maxDepth    int
	seriesLimit int
	stats       Stats
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxDepth bounds how many levels below the root are expanded.
func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		w.maxDepth = depth
	}
}

// WithSeriesLimit caps how many series are materialized per category.
func WithSeriesLimit(limit int) Option {
	return func(w *Walker) {
		w.seriesLimit = limit
	}
}

// New creates a Walker that writes into the given tree. The tree must
// already contain a node whose identifier is the root category's id.
func New(catalog Catalog, t *tree.Tree, opts ...Option) *Walker {
	w := &Walker{
		catalog:     catalog,
		tree:        t,
		maxDepth:    defaultMaxDepth,
		seriesLimit: defaultSeriesLimit,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns the accumulated traversal totals.
func (w *Walker) Stats() Stats {
	return w.stats
}

// Walk traverses the hierarchy starting at root. It always completes: remote
// and parse failures reduce to zero children of that kind and the rest of
// the hierarchy is still processed.
func (w *Walker) Walk(ctx context.Context, root fred.Category) {
	slog.Info("beginning traversal", "root_category", root.ID, "max_depth", w.maxDepth)
	w.visit(ctx, 0, root)
}

// visit processes one category and returns the number of descendant
// categories and series, excluding the category itself. Recursion stops past
// the depth limit; unvisited nodes contribute nothing to any rollup.
func (w *Walker) visit(ctx context.Context, depth int, cat fred.Category) (int, int) {
	if depth > w.maxDepth {
		return 0, 0
	}

	categoryID := strconv.FormatInt(cat.ID, 10)
	slog.Info(fmt.Sprintf("%s[#%d] %s", strings.Repeat("    ", depth), cat.ID, cat.Name))

	seriesPage := w.catalog.ChildSeries(ctx, cat.ID, w.seriesLimit)
	numSeries, numDescendantSeries := w.attachSeries(seriesPage, categoryID)

	categoryPage := w.catalog.ChildCategories(ctx, cat.ID)
	numCategories := len(categoryPage.Categories)
	numDescendantCategories := numCategories
	w.stats.Categories += int64(numCategories)

	for _, child := range categoryPage.Categories {
		// The child node goes in before recursing, so the tree shows the
		// structure even when a deeper call comes back empty.
		label := fmt.Sprintf("[#%d] %s", child.ID, child.Name)
		childID := strconv.FormatInt(child.ID, 10)
		if err := w.tree.CreateNode(label, childID, categoryID); err != nil {
			slog.Warn("skipping category node", "category_id", child.ID, "error", err)
			continue
		}

		dc, ds := w.visit(ctx, depth+1, child)
		numDescendantCategories += dc
		numDescendantSeries += ds
	}

	if numCategories > 0 || numDescendantCategories > 0 {
		w.appendLabel(categoryID, fmt.Sprintf(", contains %d/%d categories", numCategories, numDescendantCategories))
	}
	if numSeries > 0 || numDescendantSeries > 0 {
		w.appendLabel(categoryID, fmt.Sprintf(", contains %d/%d series", numSeries, numDescendantSeries))
	}

	return numDescendantCategories, numDescendantSeries
}

// attachSeries materializes up to the display cap of series under a category
// and returns (direct, descendant) series counts, both seeded with the
// server-reported total rather than the number materialized.
func (w *Walker) attachSeries(page fred.SeriesPage, categoryID string) (int, int) {
	if page.Count <= 0 || len(page.Series) == 0 {
		return 0, 0
	}

	w.stats.Series += int64(page.Count)

	shown := page.Series
	if len(shown) > w.seriesLimit {
		shown = shown[:w.seriesLimit]
	}

	remaining := page.Count
	for _, s := range shown {
		w.attachOneSeries(s, categoryID)
		remaining--
	}

	if remaining > 0 {
		label := fmt.Sprintf("plus %d additional series...", remaining)
		if err := w.tree.CreateNode(label, "", categoryID); err != nil {
			slog.Warn("skipping additional-series node", "category_id", categoryID, "error", err)
		}
	}

	return page.Count, page.Count
}

// attachOneSeries adds a series header node plus optional notes-excerpt and
// attribute child nodes. The node identifier pairs the owning category with
// the series id, because the same series can appear under several
// categories.
func (w *Walker) attachOneSeries(s fred.Series, categoryID string) {
	header := fmt.Sprintf("[%s] %s", s.ID, s.Title)
	nodeID := categoryID + "/" + s.ID
	if err := w.tree.CreateNode(header, nodeID, categoryID); err != nil {
		slog.Warn("skipping series node", "series_id", s.ID, "error", err)
		return
	}

	if excerpt := notesExcerpt(s.Notes); excerpt != "" {
		if err := w.tree.CreateNode(excerpt, "", nodeID); err != nil {
			slog.Warn("skipping notes node", "series_id", s.ID, "error", err)
		}
	}

	if attrs := seriesAttributes(s); attrs != "" {
		if err := w.tree.CreateNode(attrs, "", nodeID); err != nil {
			slog.Warn("skipping attributes node", "series_id", s.ID, "error", err)
		}
	}
}

// seriesAttributes joins the defined descriptive attributes of a series:
// update frequency, seasonal adjustment (only when actually adjusted), last
// update, and the observation date range.
func seriesAttributes(s fred.Series) string {
	var attributes []string

	if s.Frequency != "" {
		attributes = append(attributes, s.Frequency)
	}
	if s.SeasonalAdjustment != "" && s.SeasonalAdjustmentShort == "SA" {
		attributes = append(attributes, s.SeasonalAdjustment)
	}
	if s.LastUpdated != "" {
		attributes = append(attributes, "Updated "+reformatDate(s.LastUpdated))
	}
	if s.ObservationStart != "" && s.ObservationEnd != "" {
		attributes = append(attributes, fmt.Sprintf("Observations %s to %s",
			reformatDate(s.ObservationStart), reformatDate(s.ObservationEnd)))
	}

	return strings.Join(attributes, "; ")
}

func (w *Walker) appendLabel(id, text string) {
	if err := w.tree.AppendLabel(id, text); err != nil {
		slog.Warn("failed to finalize category label", "category_id", id, "error", err)
	}
}
