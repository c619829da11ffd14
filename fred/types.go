package fred

import (
	"encoding/json"
	"fmt"
)

// Category is an internal node of the remote hierarchy.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id"`
}

// Series is a leaf data item with descriptive metadata. The same series may
// legitimately appear under more than one category.
type Series struct {
	ID                      string `json:"id"`
	Title                   string `json:"title"`
	Frequency               string `json:"frequency"`
	SeasonalAdjustment      string `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string `json:"seasonal_adjustment_short"`
	LastUpdated             string `json:"last_updated"`
	ObservationStart        string `json:"observation_start"`
	ObservationEnd          string `json:"observation_end"`
	Notes                   string `json:"notes"`
}

// CategoryPage is the decoded response for a category/children request.
// Missing fields decode to the empty page rather than failing.
type CategoryPage struct {
	Categories []Category `json:"categories"`
}

// SeriesPage is the decoded response for a category/series request. Count is
// the server-reported total, which may exceed len(Series) because the server
// caps the number of items delivered per call.
type SeriesPage struct {
	Count int `json:"count"`
	// "seriess" is the key the API actually uses, not a typo.
	Series []Series `json:"seriess"`
}

// ParseCategoryPage decodes a category/children response body.
func ParseCategoryPage(body string) (CategoryPage, error) {
	var page CategoryPage
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		return CategoryPage{}, fmt.Errorf("decode category page: %w", err)
	}
	return page, nil
}

// ParseSeriesPage decodes a category/series response body.
func ParseSeriesPage(body string) (SeriesPage, error) {
	var page SeriesPage
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		return SeriesPage{}, fmt.Errorf("decode series page: %w", err)
	}
	return page, nil
}
