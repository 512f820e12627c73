package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseProvenanceParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantBefore bool
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: DefaultPageSize},
		{name: "custom limit", query: "limit=50", wantLimit: 50},
		{name: "limit capped at max", query: "limit=500", wantLimit: MaxPageSize},
		{name: "negative limit", query: "limit=-1", wantErr: true},
		{name: "non-numeric limit", query: "limit=abc", wantErr: true},
		{name: "invalid before", query: "before=not-a-timestamp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			p, err := ParseProvenanceParams(r)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseProvenanceParams() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", p.Limit, tt.wantLimit)
			}
			if (p.Before != nil) != tt.wantBefore {
				t.Errorf("Before present = %v, want %v", p.Before != nil, tt.wantBefore)
			}
		})
	}
}

func TestParseProvenanceParams_WithBefore(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := httptest.NewRequest(http.MethodGet, "/?before="+ts.Format(time.RFC3339)+"&limit=10", nil)
	p, err := ParseProvenanceParams(r)
	if err != nil {
		t.Fatalf("ParseProvenanceParams() error = %v", err)
	}
	if p.Before == nil {
		t.Fatal("Before should not be nil")
	}
	if !p.Before.Equal(ts) {
		t.Errorf("Before = %v, want %v", p.Before, ts)
	}
	if p.Limit != 10 {
		t.Errorf("Limit = %d, want 10", p.Limit)
	}
}

func TestNewProvenancePage(t *testing.T) {
	type item struct {
		ImportedAt time.Time
	}
	importedAtFn := func(i item) time.Time { return i.ImportedAt }

	t.Run("with more results", func(t *testing.T) {
		items := make([]item, 6)
		for i := range items {
			items[i] = item{ImportedAt: time.Now().Add(time.Duration(-i) * time.Hour)}
		}

		page := NewProvenancePage(items, 5, importedAtFn)
		if len(page.Records) != 5 {
			t.Errorf("Records length = %d, want 5", len(page.Records))
		}
		if page.NextBefore == nil {
			t.Error("NextBefore should not be nil")
		}
	})

	t.Run("without more results", func(t *testing.T) {
		items := make([]item, 3)
		for i := range items {
			items[i] = item{ImportedAt: time.Now()}
		}

		page := NewProvenancePage(items, 5, importedAtFn)
		if len(page.Records) != 3 {
			t.Errorf("Records length = %d, want 3", len(page.Records))
		}
		if page.NextBefore != nil {
			t.Error("NextBefore should be nil")
		}
	})

	t.Run("empty results", func(t *testing.T) {
		var items []item
		page := NewProvenancePage(items, 5, importedAtFn)
		if len(page.Records) != 0 {
			t.Errorf("Records length = %d, want 0", len(page.Records))
		}
		if page.NextBefore != nil {
			t.Error("NextBefore should be nil")
		}
	})
}
