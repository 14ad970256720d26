package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coldreach/prospector/internal/engine"
	"github.com/coldreach/prospector/pkg/models"
)

func str(s string) *string { return &s }

func TestImport_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/leads/import" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var req struct {
			Results []models.ResultRecord `json:"results"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Results) != 2 {
			t.Errorf("expected 2 results, got %d", len(req.Results))
		}

		json.NewEncoder(w).Encode(ImportResult{Added: 1, Skipped: 1})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, 5*time.Second)
	result, err := c.Import(context.Background(), engine.Session{Token: "tok-123"}, []models.ResultRecord{
		{Name: str("Acme"), Email: str("a@acme.com")},
		{Name: str("Bolt")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
}

func TestImport_RejectedWithServerMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "lead limit reached"})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, 5*time.Second)
	_, err := c.Import(context.Background(), engine.Session{}, []models.ResultRecord{{Name: str("Acme")}})
	if !errors.Is(err, ErrLeadsRejected) {
		t.Fatalf("expected ErrLeadsRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "lead limit reached") {
		t.Errorf("expected server message in error, got %q", err.Error())
	}
}

func TestImport_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := NewHTTPClient(ts.URL, 5*time.Second)
	_, err := c.Import(context.Background(), engine.Session{}, []models.ResultRecord{{Name: str("Acme")}})
	if !errors.Is(err, ErrLeadsUnreachable) {
		t.Fatalf("expected ErrLeadsUnreachable, got %v", err)
	}
}
