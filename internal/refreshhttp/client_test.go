package refreshhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-cache-convergence/pkg/testsupport"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}

func TestClient_ForceRefresh(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantApplied bool
		wantErr     bool
	}{
		{"synchronous application", http.StatusOK, true, false},
		{"accepted for async processing", http.StatusAccepted, false, false},
		{"server error", http.StatusInternalServerError, false, true},
		{"not found", http.StatusNotFound, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotBody map[string]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
					t.Errorf("decode request body: %v", err)
				}
				if tt.status >= 400 {
					http.Error(w, "cache backend unavailable", tt.status)
					return
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client, err := New(Config{BaseURL: server.URL})
			if err != nil {
				t.Fatal(err)
			}

			fields := map[string]string{"name": "app-v001", "region": "us-east-1", "account": "prod"}
			result, err := client.ForceRefresh(context.Background(), "aws", "serverGroup", fields)

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if result.Applied != tt.wantApplied {
				t.Errorf("Applied = %v, want %v", result.Applied, tt.wantApplied)
			}
			if gotPath != "/cache/aws/serverGroup" {
				t.Errorf("path = %q", gotPath)
			}
			if gotBody["name"] != "app-v001" {
				t.Errorf("body = %v", gotBody)
			}
		})
	}
}

func TestClient_PendingUpdates(t *testing.T) {
	fixture := testsupport.LoadFixture(t, "testdata/pending_updates.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cache/aws/serverGroup/pending" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	updates, err := client.PendingUpdates(context.Background(), "aws", "serverGroup")
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}

	processed := updates[0]
	if !processed.Processed() {
		t.Error("first record should be processed")
	}
	if got, want := processed.ProcessedAt, time.UnixMilli(1767225660000); !got.Equal(want) {
		t.Errorf("ProcessedAt = %v, want %v", got, want)
	}
	if got, want := processed.CachedAt, time.UnixMilli(1767225600000); !got.Equal(want) {
		t.Errorf("CachedAt = %v, want %v", got, want)
	}
	if processed.Details["name"] != "app-v001" {
		t.Errorf("details = %v", processed.Details)
	}

	// A missing processedTime must come back as the zero time.
	inflight := updates[1]
	if inflight.Processed() {
		t.Error("second record should not be processed")
	}
	if !inflight.ProcessedAt.IsZero() {
		t.Errorf("ProcessedAt = %v, want zero", inflight.ProcessedAt)
	}
}

func TestClient_PendingUpdatesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "redis down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.PendingUpdates(context.Background(), "aws", "serverGroup"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
