// Package places wraps the place-search provider behind a small Directory
// contract: one ranked search and one reservation-metadata lookup.
package places

import "context"

// Place is a single directory search result. Provider-optional fields stay
// nil/empty when the provider omits them; consumers must handle absence.
type Place struct {
	ID          string // provider-assigned, required for detail lookups
	Name        string
	Address     string
	Rating      *float64 // 0.0-5.0
	RatingCount *int
	Phone       string
	Website     string
	MapsURL     string
	OpenNow     *bool
	PriceLevel  *int // 0-4 scale
}

// Method describes how a place takes reservations.
type Method string

const (
	MethodOnline  Method = "online"
	MethodPhone   Method = "phone"
	MethodUnknown Method = "unknown"
)

// ReservationInfo is the booking metadata for a place.
type ReservationInfo struct {
	PlaceID    string
	Method     Method
	Phone      string
	Website    string
	BookingURL string
	Platform   string
	MapsURL    string
}

// Directory is the place-search contract the orchestrator depends on.
//
// Search returns places ranked by the provider's relevance, capped at a
// small fixed count. An unresolvable location or zero hits yields an empty
// slice and a nil error; only transport/provider faults return an error.
type Directory interface {
	Search(ctx context.Context, query, location string) ([]Place, error)
	ReservationInfo(ctx context.Context, placeID string) (ReservationInfo, error)
}
