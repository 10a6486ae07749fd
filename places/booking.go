package places

import "strings"

// bookingPlatforms is the allow-list of domains recognized as dedicated
// reservation platforms. A website on any other domain is treated as a
// generic site, not a booking link.
var bookingPlatforms = []string{
	"opentable.com",
	"resy.com",
	"yelp.com/reservations",
	"sevenrooms.com",
	"tock.com",
	"bookatable.com",
	"thefork.com",
	"reserve.google.com",
}

// BookingURL returns the website itself when it points at a recognized
// reservation platform, or "" otherwise.
func BookingURL(website string) string {
	lower := strings.ToLower(website)
	for _, platform := range bookingPlatforms {
		if strings.Contains(lower, platform) {
			return website
		}
	}
	return ""
}

// PlatformName maps a booking URL to a speakable platform name.
func PlatformName(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "opentable"):
		return "OpenTable"
	case strings.Contains(lower, "resy"):
		return "Resy"
	case strings.Contains(lower, "tock"):
		return "Tock"
	case strings.Contains(lower, "sevenrooms"):
		return "SevenRooms"
	case strings.Contains(lower, "yelp"):
		return "Yelp"
	case strings.Contains(lower, "reserve.google"):
		return "Google Reserve"
	case strings.Contains(lower, "thefork"):
		return "TheFork"
	case strings.Contains(lower, "bookatable"):
		return "Bookatable"
	}
	return "their website"
}

// resolveReservation classifies a place's contact metadata into a
// ReservationInfo, preferring an online booking link over a phone number.
func resolveReservation(placeID string, p Place) ReservationInfo {
	info := ReservationInfo{
		PlaceID: placeID,
		Phone:   p.Phone,
		Website: p.Website,
		MapsURL: p.MapsURL,
	}

	if url := BookingURL(p.Website); url != "" {
		info.Method = MethodOnline
		info.BookingURL = url
		info.Platform = PlatformName(url)
		return info
	}
	if p.Phone != "" {
		info.Method = MethodPhone
		return info
	}
	info.Method = MethodUnknown
	return info
}
