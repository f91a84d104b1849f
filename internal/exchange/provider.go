// Package exchange fetches currency exchange rates from external HTTP APIs.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Provider fetches the current exchange rates of every currency it knows,
// expressed as units per one unit of base.
type Provider interface {
	// Name returns the provider's display name (e.g. "exchangerate-api").
	Name() string

	// FetchRates returns code -> rate for the given base currency.
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// HTTPProvider is a Provider backed by a JSON HTTP endpoint. The endpoint URL
// contains a "{base}" placeholder and the rates object is located in the
// response body with a JSONPath expression such as "$.rates".
type HTTPProvider struct {
	name        string
	httpClient  *http.Client
	urlTemplate string
	ratesPath   string
}

// NewHTTPProvider creates a new HTTP-backed rate provider.
func NewHTTPProvider(name string, httpClient *http.Client, urlTemplate, ratesPath string) *HTTPProvider {
	if ratesPath == "" {
		ratesPath = "$.rates"
	}
	return &HTTPProvider{
		name:        name,
		httpClient:  httpClient,
		urlTemplate: urlTemplate,
		ratesPath:   ratesPath,
	}
}

// NewHTTPClient returns the client shared by rate providers.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Name returns the provider's display name.
func (p *HTTPProvider) Name() string { return p.name }

// FetchRates fetches the rates for base. Any transport error, non-200 status,
// undecodable body or empty rate set is reported as an error.
func (p *HTTPProvider) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	base = strings.ToUpper(base)
	url := strings.ReplaceAll(p.urlTemplate, "{base}", base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", p.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s http request for %s: %w", p.name, base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request for %s: unexpected status %d", p.name, base, resp.StatusCode)
	}

	var doc interface{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s response for %s: %w", p.name, base, err)
	}

	raw, err := jsonpath.Get(p.ratesPath, doc)
	if err != nil {
		return nil, fmt.Errorf("%s response for %s: %q: %w", p.name, base, p.ratesPath, err)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s response for %s: %q is not an object", p.name, base, p.ratesPath)
	}

	rates := make(map[string]decimal.Decimal, len(obj))
	for code, v := range obj {
		rate, err := toDecimal(v)
		if err != nil || !rate.IsPositive() {
			continue
		}
		rates[strings.ToUpper(code)] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%s returned no rates for %s", p.name, base)
	}
	return rates, nil
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	}
	return decimal.Zero, fmt.Errorf("unexpected rate value %v", v)
}
