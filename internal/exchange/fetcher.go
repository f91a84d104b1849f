package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateSet is one successful fetch.
type RateSet struct {
	Base      string
	Provider  string
	Rates     map[string]decimal.Decimal
	FetchedAt time.Time
}

// Fetcher asks each provider in order and returns the first successful
// answer. At most one request per provider is made.
type Fetcher struct {
	providers []Provider
	now       func() time.Time
}

// NewFetcher creates a Fetcher trying providers in the given order.
func NewFetcher(providers ...Provider) *Fetcher {
	return &Fetcher{providers: providers, now: time.Now}
}

// Fetch returns the rates for base from the first provider that succeeds.
// When every provider fails the joined provider errors are returned.
func (f *Fetcher) Fetch(ctx context.Context, base string) (*RateSet, error) {
	base = strings.ToUpper(base)

	var errs []error
	for _, p := range f.providers {
		rates, err := p.FetchRates(ctx, base)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return &RateSet{
			Base:      base,
			Provider:  p.Name(),
			Rates:     rates,
			FetchedAt: f.now().UTC(),
		}, nil
	}

	if len(errs) == 0 {
		return nil, errors.New("no exchange rate providers configured")
	}
	return nil, errors.Join(errs...)
}
