package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bmohb/iiroc-scrape/internal/config"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		statusCode  int
		wantError   bool
		wantBody    string
	}{
		{
			name:        "successful fetch",
			body:        `<html><body><td class="ms-vb">x</td></body></html>`,
			contentType: "text/html; charset=utf-8",
			statusCode:  http.StatusOK,
			wantBody:    `<html><body><td class="ms-vb">x</td></body></html>`,
		},
		{
			name:        "latin-1 page is decoded",
			body:        "<html><body>Soci\xe9t\xe9</body></html>",
			contentType: "text/html; charset=iso-8859-1",
			statusCode:  http.StatusOK,
			wantBody:    "<html><body>Société</body></html>",
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("User-Agent"); got != config.DefaultUserAgent {
					t.Errorf("User-Agent = %q, want %q", got, config.DefaultUserAgent)
				}
				if r.Method != http.MethodGet {
					t.Errorf("Method = %s, want GET", r.Method)
				}
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.URL = server.URL

			data, err := NewFetcher(cfg).Fetch(context.Background())
			if tt.wantError {
				if err == nil {
					t.Error("Fetch() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if string(data) != tt.wantBody {
				t.Errorf("Fetch() body = %q, want %q", string(data), tt.wantBody)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := config.Default()
	cfg.URL = server.URL
	cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := NewFetcher(cfg).Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Fetch() took %s, timeout not applied", elapsed)
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.URL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(cfg).Fetch(ctx)
	if err == nil {
		t.Fatal("Fetch() with canceled context expected error")
	}
	if !strings.Contains(err.Error(), "fetching page") {
		t.Errorf("error = %v, want fetching page error", err)
	}
}

func TestFetch_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := config.Default()
	cfg.URL = url

	if _, err := NewFetcher(cfg).Fetch(context.Background()); err == nil {
		t.Error("Fetch() against closed server expected error")
	}
}

func TestFetcherURL(t *testing.T) {
	if got := NewFetcher(config.Default()).URL(); got != config.DefaultURL {
		t.Errorf("URL() = %q, want %q", got, config.DefaultURL)
	}
}
