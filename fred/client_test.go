package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetAppendsFileTypeAndKey(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/category/children" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"categories":[]}`))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithAPIKey("abcdefghijklmnopqrstuvwxyz123456"),
		WithTimeout(5*time.Second),
	)

	body, err := client.Get(context.Background(), CategoryChildrenPath(0))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if body != `{"categories":[]}` {
		t.Errorf("body = %q, want raw response text", body)
	}
	want := "category_id=0&file_type=json&api_key=abcdefghijklmnopqrstuvwxyz123456"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestGetServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.Get(context.Background(), CategorySeriesPath(125, 100)); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestGetContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Get(ctx, CategoryChildrenPath(0)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRequestPaths(t *testing.T) {
	if got := CategoryChildrenPath(13); got != "category/children?category_id=13" {
		t.Errorf("CategoryChildrenPath = %q", got)
	}
	if got := CategorySeriesPath(13, 100); got != "category/series?category_id=13&limit=100" {
		t.Errorf("CategorySeriesPath = %q", got)
	}
}

func TestParseCategoryPage(t *testing.T) {
	body := `{"categories":[{"id":125,"name":"Trade Balance","parent_id":13}]}`
	page, err := ParseCategoryPage(body)
	if err != nil {
		t.Fatalf("ParseCategoryPage failed: %v", err)
	}
	if len(page.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(page.Categories))
	}
	cat := page.Categories[0]
	if cat.ID != 125 || cat.Name != "Trade Balance" || cat.ParentID != 13 {
		t.Errorf("category = %+v", cat)
	}
}

func TestParseSeriesPage(t *testing.T) {
	body := `{
		"count": 45,
		"seriess": [{
			"id": "BOPGSTB",
			"title": "Trade Balance: Goods and Services",
			"frequency": "Monthly",
			"seasonal_adjustment": "Seasonally Adjusted",
			"seasonal_adjustment_short": "SA",
			"last_updated": "2021-01-17 17:43:24-05",
			"observation_start": "1992-01-01",
			"observation_end": "2020-11-01",
			"notes": "BEA Account Code: TB"
		}]
	}`
	page, err := ParseSeriesPage(body)
	if err != nil {
		t.Fatalf("ParseSeriesPage failed: %v", err)
	}
	if page.Count != 45 {
		t.Errorf("Count = %d, want 45", page.Count)
	}
	if len(page.Series) != 1 {
		t.Fatalf("got %d series, want 1", len(page.Series))
	}
	s := page.Series[0]
	if s.ID != "BOPGSTB" || s.SeasonalAdjustmentShort != "SA" || s.Notes != "BEA Account Code: TB" {
		t.Errorf("series = %+v", s)
	}
}

func TestParseMalformedBody(t *testing.T) {
	if _, err := ParseCategoryPage("not json"); err == nil {
		t.Error("expected error for malformed category page")
	}
	if _, err := ParseSeriesPage("not json"); err == nil {
		t.Error("expected error for malformed series page")
	}
}
