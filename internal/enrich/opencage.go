package enrich

// opencage.go adapts the OpenCage forward geocoder to the Geocoder
// interface. geo-golang's API is not context-aware, so the blocking
// call runs in a goroutine and the adapter abandons it when the
// caller's deadline expires.

import (
	"context"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/opencage"

	"github.com/imm-a8ub/backoffice/internal/listing"
)

// OpenCageGeocoder resolves addresses through the OpenCage API.
type OpenCageGeocoder struct {
	geocoder geo.Geocoder
}

// NewOpenCageGeocoder creates a geocoder using the given API key.
func NewOpenCageGeocoder(apiKey string) *OpenCageGeocoder {
	return &OpenCageGeocoder{geocoder: opencage.Geocoder(apiKey)}
}

type geocodeReply struct {
	location *geo.Location
	err      error
}

// Geocode implements Geocoder.
func (g *OpenCageGeocoder) Geocode(ctx context.Context, address string) (*listing.Point, error) {
	replyCh := make(chan geocodeReply, 1)
	go func() {
		loc, err := g.geocoder.Geocode(address)
		replyCh <- geocodeReply{location: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-replyCh:
		if reply.err != nil {
			return nil, reply.err
		}
		if reply.location == nil {
			// Provider found nothing; not an error.
			return nil, nil
		}
		return &listing.Point{Lat: reply.location.Lat, Lon: reply.location.Lng}, nil
	}
}
