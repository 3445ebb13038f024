package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

func testConfig(t *testing.T, serverUrl string) *cfg.Config {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("load mock config: %v", err)
	}
	config.Provider.SearchApiUrl = serverUrl + "/search/repositories"
	config.Provider.ReadmeApiUrl = serverUrl + "/repos/{full_name}/readme"
	config.Provider.RequestsPerSecond = 1000
	config.Provider.ThrottleDelay = 1
	config.Provider.DefaultResetWait = 1
	return config
}

func newTestCaller(t *testing.T, serverUrl string) *Caller {
	t.Helper()
	logger, _ := log.NewCslLogger()
	return NewCaller(logger, testConfig(t, serverUrl))
}

func TestSearch_DecodesPage(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{
			"total_count": 2,
			"incomplete_results": false,
			"items": [
				{"id": 11, "name": "alpha", "full_name": "org/alpha", "stargazers_count": 1500, "language": "Go", "topics": ["web", "http"]},
				{"id": 12, "name": "beta", "full_name": "org/beta", "stargazers_count": 50, "language": "Go", "topics": []}
			]
		}`)
	}))
	t.Cleanup(server.Close)

	caller := newTestCaller(t, server.URL)
	items, err := caller.Search(context.Background(), "Go", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/search/repositories" {
		t.Fatalf("got path %q", gotPath)
	}
	for _, want := range []string{"language:Go", "stars:>=50", "page=3", "per_page=100", "sort=stars", "order=desc"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Id != 11 || items[0].FullName != "org/alpha" || items[0].StargazersCount != 1500 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if len(items[0].Topics) != 2 {
		t.Fatalf("got topics %v, want 2 entries", items[0].Topics)
	}
}

func TestSearch_ThrottleWithResetHeader(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	caller := newTestCaller(t, server.URL)
	_, err := caller.Search(context.Background(), "Go", 1)

	var throttle *ThrottleError
	if !errors.As(err, &throttle) {
		t.Fatalf("expected ThrottleError, got %T: %v", err, err)
	}
	if diff := throttle.ResetAt.Sub(resetAt); diff < -time.Second || diff > time.Second {
		t.Fatalf("reset instant off by %v", diff)
	}
	if throttle.Wait() <= 0 {
		t.Fatal("expected positive wait")
	}
}

func TestSearch_ThrottleWithoutHeaderUsesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	caller := newTestCaller(t, server.URL)
	_, err := caller.Search(context.Background(), "Go", 1)

	var throttle *ThrottleError
	if !errors.As(err, &throttle) {
		t.Fatalf("expected ThrottleError, got %T: %v", err, err)
	}
	// DefaultResetWait is 1s in the test config.
	if w := throttle.Wait(); w <= 0 || w > 2*time.Second {
		t.Fatalf("got wait %v, want about 1s", w)
	}
}

func TestSearch_FailureIsNotThrottle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	caller := newTestCaller(t, server.URL)
	_, err := caller.Search(context.Background(), "Go", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	var throttle *ThrottleError
	if errors.As(err, &throttle) {
		t.Fatalf("500 must not classify as throttle: %v", err)
	}
}

func TestFetchReadme_DecodesBase64(t *testing.T) {
	content := "# Alpha\n\nInstall with go get. Usage examples below."
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	// Provider wraps base64 at 60 columns; emulate the embedded newline.
	wrapped := encoded[:10] + "\n" + encoded[10:]

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprintf(w, `{"name": "README.md", "content": %q, "encoding": "base64"}`, wrapped)
	}))
	t.Cleanup(server.Close)

	caller := newTestCaller(t, server.URL)
	doc, err := caller.FetchReadme(context.Background(), "org/alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/repos/org/alpha/readme" {
		t.Fatalf("got path %q", gotPath)
	}
	if doc != content {
		t.Fatalf("got %q, want %q", doc, content)
	}
}

func TestFetchReadme_AbsentIsSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	caller := newTestCaller(t, server.URL)
	_, err := caller.FetchReadme(context.Background(), "org/ghost")
	if !errors.Is(err, ErrNoReadme) {
		t.Fatalf("expected ErrNoReadme, got %v", err)
	}
}
