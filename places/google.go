package places

import (
	"context"
	"fmt"
	"log"

	"googlemaps.github.io/maps"
)

const (
	searchRadiusMeters = 5000
	maxResults         = 5
)

// GoogleDirectory implements Directory against the Google Maps Web APIs:
// geocoding to resolve the location string, Nearby Search for ranked
// results, and Place Details to enrich each hit.
type GoogleDirectory struct {
	client *maps.Client
}

// NewGoogleDirectory creates a directory backed by the Google Maps client.
func NewGoogleDirectory(apiKey string) (*GoogleDirectory, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleDirectory{client: client}, nil
}

// Search geocodes the location and returns up to maxResults nearby places
// ranked by prominence. An unresolvable location yields an empty result,
// not an error.
func (d *GoogleDirectory) Search(ctx context.Context, query, location string) ([]Place, error) {
	geo, err := d.client.Geocode(ctx, &maps.GeocodingRequest{Address: location})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}
	if len(geo) == 0 {
		log.Printf("⚠️ Could not geocode location: %s", location)
		return []Place{}, nil
	}
	latLng := geo[0].Geometry.Location

	resp, err := d.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: latLng.Lat, Lng: latLng.Lng},
		Radius:   searchRadiusMeters,
		Keyword:  query,
		RankBy:   maps.RankByProminence,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search %q: %w", query, err)
	}

	results := resp.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		p := Place{
			ID:      r.PlaceID,
			Name:    r.Name,
			Address: r.Vicinity,
		}
		if r.Rating > 0 {
			rating := float64(r.Rating)
			p.Rating = &rating
		}
		if r.UserRatingsTotal > 0 {
			count := r.UserRatingsTotal
			p.RatingCount = &count
		}

		// Enrichment is best-effort; a failed details lookup still
		// leaves a usable search hit.
		if r.PlaceID != "" {
			if err := d.enrich(ctx, &p); err != nil {
				log.Printf("⚠️ Place details lookup failed for %s: %v", r.Name, err)
			}
		}
		places = append(places, p)
	}

	log.Printf("🔍 Found %d places for query %q near %q", len(places), query, location)
	return places, nil
}

// ReservationInfo fetches booking metadata for a place and classifies the
// reservation method.
func (d *GoogleDirectory) ReservationInfo(ctx context.Context, placeID string) (ReservationInfo, error) {
	p := Place{ID: placeID}
	if err := d.enrich(ctx, &p); err != nil {
		return ReservationInfo{}, fmt.Errorf("place details %s: %w", placeID, err)
	}
	return resolveReservation(placeID, p), nil
}

// enrich merges a Place Details lookup into p.
func (d *GoogleDirectory) enrich(ctx context.Context, p *Place) error {
	details, err := d.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: p.ID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
			maps.PlaceDetailsFieldMaskWebsite,
			maps.PlaceDetailsFieldMaskURL,
			maps.PlaceDetailsFieldMaskOpeningHours,
			maps.PlaceDetailsFieldMaskPriceLevel,
		},
	})
	if err != nil {
		return err
	}

	p.Phone = details.FormattedPhoneNumber
	p.Website = details.Website
	p.MapsURL = details.URL
	if details.PriceLevel > 0 {
		level := details.PriceLevel
		p.PriceLevel = &level
	}
	if details.OpeningHours != nil && details.OpeningHours.OpenNow != nil {
		open := *details.OpeningHours.OpenNow
		p.OpenNow = &open
	}
	return nil
}
