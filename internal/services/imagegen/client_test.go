package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vidplan/internal/assets"
	"vidplan/internal/services"
	"vidplan/internal/testsupport"
)

func sampleRequirement() assets.Requirement {
	return assets.Requirement{
		AssetID:     "hero",
		Description: "a sunset",
		Spec:        assets.Spec{Width: 640, Height: 360, Style: "watercolor"},
	}
}

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Error("expected request id header")
		}
		var body generateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		want := generateRequest{AssetID: "hero", Description: "a sunset", Width: 640, Height: 360, Style: "watercolor"}
		if body != want {
			t.Errorf("unexpected payload %#v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn/hero.png"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	got, err := client.Generate(context.Background(), sampleRequirement())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got.URL != "https://cdn/hero.png" {
		t.Fatalf("unexpected url %q", got.URL)
	}
}

func TestClientAcceptsImageURLField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"imageUrl": "https://cdn/alt.png"})
	}))
	defer server.Close()

	got, err := NewClient(Config{BaseURL: server.URL}).Generate(context.Background(), sampleRequirement())
	if err != nil || got.URL != "https://cdn/alt.png" {
		t.Fatalf("unexpected result %#v %v", got, err)
	}
}

func TestClientMissingURLIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).Generate(context.Background(), sampleRequirement())
	if !errors.Is(err, assets.ErrNoURL) || !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected missing url error, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn/ok.png"})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(3),
	)
	got, err := client.Generate(context.Background(), sampleRequirement())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got.URL != "https://cdn/ok.png" || calls != 2 {
		t.Fatalf("unexpected result %#v after %d calls", got, calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(time.Second, 10*time.Second),
		WithRetryMaxAttempts(3),
	)
	_, err := client.Generate(context.Background(), sampleRequirement())
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Fatalf("expected attempt count in error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("unexpected backoff %v", slept)
	}
}

func TestClientDoesNotRetryBadRequest(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"prompt rejected"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}, WithSleeper(func(time.Duration) {})).Generate(context.Background(), sampleRequirement())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestClientStopsOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(
		Config{BaseURL: server.URL},
		WithSleeper(func(time.Duration) { cancel() }),
		WithRetryMaxAttempts(5),
	)
	_, err := client.Generate(ctx, sampleRequirement())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}).Generate(context.Background(), sampleRequirement())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewFromConfigUsesGenerationSettings(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn/x.png"})
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithGenerationURL(server.URL))
	client := NewFromConfig(cfg)
	if client.retryAttempts() != cfg.Generation.RetryAttempts+1 {
		t.Fatalf("unexpected attempts %d", client.retryAttempts())
	}
	if client.timeoutDuration() != 5*time.Second {
		t.Fatalf("unexpected timeout %s", client.timeoutDuration())
	}
	if _, err := client.Generate(context.Background(), sampleRequirement()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if auth != "Bearer test" {
		t.Fatalf("unexpected auth %q", auth)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative retry-after should be ignored")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage retry-after should be ignored")
	}
}
