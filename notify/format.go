package notify

import (
	"fmt"
	"strings"

	"github.com/WilliamZhang9/Call2Map/places"
)

const maxListedPlaces = 3

// FormatPlaces renders search results into SMS-friendly text, capped at
// the top few entries.
func FormatPlaces(results []places.Place) string {
	if len(results) == 0 {
		return "No places found."
	}

	var b strings.Builder
	b.WriteString("🔍 Places I found:\n\n")

	listed := results
	if len(listed) > maxListedPlaces {
		listed = listed[:maxListedPlaces]
	}
	for i, p := range listed {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		if p.Rating != nil {
			fmt.Fprintf(&b, "   ⭐ %.1f", *p.Rating)
			if p.RatingCount != nil {
				fmt.Fprintf(&b, " (%d reviews)", *p.RatingCount)
			}
			b.WriteString("\n")
		}
		if p.Address != "" {
			fmt.Fprintf(&b, "   📍 %s\n", p.Address)
		}
		if p.Phone != "" {
			fmt.Fprintf(&b, "   📞 %s\n", p.Phone)
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

// FormatBooking renders the SMS for an online booking link.
func FormatBooking(p places.Place, info places.ReservationInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Book a table at %s:\n\n", p.Name)
	fmt.Fprintf(&b, "📱 %s\n\n", info.BookingURL)
	if p.Phone != "" {
		fmt.Fprintf(&b, "Or call: %s\n\n", p.Phone)
	}
	fmt.Fprintf(&b, "View on map: %s", info.MapsURL)
	return b.String()
}

// FormatPhoneReservation renders the SMS for a call-to-book place.
func FormatPhoneReservation(p places.Place, info places.ReservationInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Call %s to reserve:\n\n", p.Name)
	fmt.Fprintf(&b, "📞 %s\n\n", info.Phone)
	if p.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n\n", p.Address)
	}
	fmt.Fprintf(&b, "View on map: %s", info.MapsURL)
	return b.String()
}

// FormatWebsite renders the SMS for a place with only a generic website.
func FormatWebsite(p places.Place) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n\n", p.Name)
	fmt.Fprintf(&b, "🌐 %s\n", p.Website)
	if p.Phone != "" {
		fmt.Fprintf(&b, "\n📞 %s", p.Phone)
	}
	return b.String()
}
