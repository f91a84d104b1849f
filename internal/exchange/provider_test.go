package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// newRatesServer creates a test server answering every request with the given
// status and body, counting the requests it receives.
func newRatesServer(status int, body string, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestHTTPProvider_FetchRates(t *testing.T) {
	t.Run("extracts_rates_with_jsonpath", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"base":"MXN","rates":{"USD":0.0581,"eur":0.0534,"MXN":1}}`))
		}))
		defer server.Close()

		p := NewHTTPProvider("primary", server.Client(), server.URL+"/latest/{base}", "$.rates")
		rates, err := p.FetchRates(context.Background(), "mxn")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/latest/MXN" {
			t.Errorf("expected /latest/MXN, got %s", gotPath)
		}
		if !rates["USD"].Equal(decimal.RequireFromString("0.0581")) {
			t.Errorf("USD = %s, want 0.0581", rates["USD"])
		}
		if _, ok := rates["EUR"]; !ok {
			t.Error("expected codes to be upper-cased")
		}
	})

	t.Run("nested_path", func(t *testing.T) {
		server := newRatesServer(http.StatusOK, `{"data":{"quotes":{"USD":"0.05"}}}`, nil)
		defer server.Close()

		p := NewHTTPProvider("nested", server.Client(), server.URL, "$.data.quotes")
		rates, err := p.FetchRates(context.Background(), "MXN")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rates["USD"].Equal(decimal.RequireFromString("0.05")) {
			t.Errorf("USD = %s, want 0.05", rates["USD"])
		}
	})

	t.Run("non_200_is_error", func(t *testing.T) {
		server := newRatesServer(http.StatusServiceUnavailable, `{}`, nil)
		defer server.Close()

		p := NewHTTPProvider("primary", server.Client(), server.URL, "")
		if _, err := p.FetchRates(context.Background(), "MXN"); err == nil {
			t.Fatal("expected error for 503")
		}
	})

	t.Run("undecodable_body_is_error", func(t *testing.T) {
		server := newRatesServer(http.StatusOK, `<html>`, nil)
		defer server.Close()

		p := NewHTTPProvider("primary", server.Client(), server.URL, "")
		if _, err := p.FetchRates(context.Background(), "MXN"); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("empty_rates_is_error", func(t *testing.T) {
		server := newRatesServer(http.StatusOK, `{"rates":{}}`, nil)
		defer server.Close()

		p := NewHTTPProvider("primary", server.Client(), server.URL, "")
		_, err := p.FetchRates(context.Background(), "MXN")
		if err == nil || !strings.Contains(err.Error(), "no rates") {
			t.Fatalf("expected no rates error, got %v", err)
		}
	})

	t.Run("timeout_is_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"rates":{"USD":1}}`))
		}))
		defer server.Close()

		p := NewHTTPProvider("slow", NewHTTPClient(20*time.Millisecond), server.URL, "")
		if _, err := p.FetchRates(context.Background(), "MXN"); err == nil {
			t.Fatal("expected timeout error")
		}
	})
}

func TestFetcher_Fetch(t *testing.T) {
	t.Run("primary_success_skips_secondary", func(t *testing.T) {
		var secondaryHits atomic.Int32
		primary := newRatesServer(http.StatusOK, `{"rates":{"USD":0.05}}`, nil)
		defer primary.Close()
		secondary := newRatesServer(http.StatusOK, `{"rates":{"USD":0.06}}`, &secondaryHits)
		defer secondary.Close()

		f := NewFetcher(
			NewHTTPProvider("primary", primary.Client(), primary.URL, ""),
			NewHTTPProvider("secondary", secondary.Client(), secondary.URL, ""),
		)
		set, err := f.Fetch(context.Background(), "MXN")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Provider != "primary" {
			t.Errorf("expected primary, got %s", set.Provider)
		}
		if secondaryHits.Load() != 0 {
			t.Errorf("secondary should not be called, got %d hits", secondaryHits.Load())
		}
	})

	t.Run("falls_back_to_secondary", func(t *testing.T) {
		primary := newRatesServer(http.StatusInternalServerError, `oops`, nil)
		defer primary.Close()
		secondary := newRatesServer(http.StatusOK, `{"rates":{"USD":0.06}}`, nil)
		defer secondary.Close()

		f := NewFetcher(
			NewHTTPProvider("primary", primary.Client(), primary.URL, ""),
			NewHTTPProvider("secondary", secondary.Client(), secondary.URL, ""),
		)
		set, err := f.Fetch(context.Background(), "mxn")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Provider != "secondary" || set.Base != "MXN" {
			t.Errorf("unexpected set %+v", set)
		}
		if !set.Rates["USD"].Equal(decimal.RequireFromString("0.06")) {
			t.Errorf("USD = %s, want 0.06", set.Rates["USD"])
		}
	})

	t.Run("both_fail", func(t *testing.T) {
		primary := newRatesServer(http.StatusInternalServerError, ``, nil)
		defer primary.Close()
		secondary := newRatesServer(http.StatusOK, `{"rates":{}}`, nil)
		defer secondary.Close()

		f := NewFetcher(
			NewHTTPProvider("primary", primary.Client(), primary.URL, ""),
			NewHTTPProvider("secondary", secondary.Client(), secondary.URL, ""),
		)
		set, err := f.Fetch(context.Background(), "MXN")
		if set != nil {
			t.Errorf("expected nil set, got %+v", set)
		}
		if err == nil || !strings.Contains(err.Error(), "primary") || !strings.Contains(err.Error(), "secondary") {
			t.Errorf("expected error naming both providers, got %v", err)
		}
	})

	t.Run("no_providers", func(t *testing.T) {
		_, err := NewFetcher().Fetch(context.Background(), "MXN")
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("cancelled_context_stops", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var secondaryHits atomic.Int32
		primary := newRatesServer(http.StatusOK, `{"rates":{"USD":1}}`, nil)
		defer primary.Close()
		secondary := newRatesServer(http.StatusOK, `{"rates":{"USD":1}}`, &secondaryHits)
		defer secondary.Close()

		f := NewFetcher(
			NewHTTPProvider("primary", primary.Client(), primary.URL, ""),
			NewHTTPProvider("secondary", secondary.Client(), secondary.URL, ""),
		)
		_, err := f.Fetch(ctx, "MXN")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if secondaryHits.Load() != 0 {
			t.Error("secondary should not be called after cancellation")
		}
	})
}
