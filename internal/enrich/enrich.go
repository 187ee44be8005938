// Package enrich augments normalized listings with geocoordinates and
// a restructured description.
//
// Both capabilities sit behind narrow interfaces so the concrete
// providers (OpenCage, OpenAI) are swappable in tests and behind
// feature flags. Every failure mode — error, timeout, malformed
// response — degrades to a fallback: nil coordinates, or the original
// description text. Enrichment never fails the surrounding pipeline.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imm-a8ub/backoffice/internal/listing"
)

// Geocoder resolves a free-text address to coordinates. A nil Point
// with nil error means the provider found no result.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*listing.Point, error)
}

// Restructurer rewrites a raw listing description into the fixed
// section template (location, characteristics with POT/CUT/frontage,
// accessibility, neighborhood, extra info).
type Restructurer interface {
	Restructure(ctx context.Context, description string) (string, error)
}

// Result is the outcome of one restructure call. Degraded
// distinguishes a genuine rewrite from the original text substituted
// after a provider failure; callers that cache or bill per rewrite
// need to tell the two apart.
type Result struct {
	Text     string
	Degraded bool
}

// Enricher fans enrichment calls out over a batch of listings.
type Enricher struct {
	geocoder     Geocoder
	restructurer Restructurer

	// callTimeout bounds each individual provider call. The text
	// provider routinely takes north of a minute per description, so
	// this is on the order of minutes, not seconds.
	callTimeout time.Duration

	// maxInFlight bounds concurrent provider calls per batch.
	maxInFlight int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Enricher) { e.callTimeout = d }
}

// WithMaxInFlight overrides the per-batch concurrency bound.
func WithMaxInFlight(n int) Option {
	return func(e *Enricher) { e.maxInFlight = n }
}

// New creates an Enricher. Either provider may be nil, in which case
// that capability always degrades.
func New(g Geocoder, r Restructurer, opts ...Option) *Enricher {
	e := &Enricher{
		geocoder:     g,
		restructurer: r,
		callTimeout:  3 * time.Minute,
		maxInFlight:  8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restructure rewrites a single description, degrading to the
// original text on any provider failure.
func (e *Enricher) Restructure(ctx context.Context, description string) Result {
	if e.restructurer == nil || description == "" {
		return Result{Text: description, Degraded: true}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	text, err := e.restructurer.Restructure(callCtx, description)
	if err != nil || text == "" {
		slog.Warn("enrich: restructure degraded to original text", "error", err)
		return Result{Text: description, Degraded: true}
	}
	return Result{Text: text}
}

// Geocode resolves an address, degrading to nil on any failure.
func (e *Enricher) Geocode(ctx context.Context, address string) *listing.Point {
	if e.geocoder == nil || address == "" {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	pt, err := e.geocoder.Geocode(callCtx, address)
	if err != nil {
		slog.Warn("enrich: geocode degraded", "address", address, "error", err)
		return nil
	}
	return pt
}

// EnrichBatch enriches listings in place: each row's description is
// restructured and its zone geocoded, with all provider calls issued
// concurrently under independent timeouts. A slow or failed call
// resolves only its own row to the fallback; siblings are unaffected.
// The call returns once every row has a result, in input order.
func (e *Enricher) EnrichBatch(ctx context.Context, items []listing.Listing) []listing.Listing {
	out := make([]listing.Listing, len(items))
	copy(out, items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxInFlight)

	for i := range out {
		i := i
		g.Go(func() error {
			// On degradation Result carries the original description,
			// so the row still serializes with a usable text.
			out[i].Structured = e.Restructure(gctx, out[i].Description).Text
			out[i].Coordinates = e.Geocode(gctx, out[i].Zone)
			return nil
		})
	}

	// Tasks never return errors; degraded rows already hold fallbacks.
	_ = g.Wait()
	return out
}
