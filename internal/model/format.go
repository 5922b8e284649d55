package model

import "fmt"

// PlaceholderPoster is shown when a movie has no posters of its own.
const PlaceholderPoster = "https://via.placeholder.com/400x600?text=No+Poster"

// FormatDuration renders minutes as "2h 15m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatPrice renders a base price with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

// Pluralize returns "1 booking" or "3 bookings".
func Pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Posters returns the poster list, falling back to the placeholder.
func (m Movie) Posters() []string {
	if len(m.PosterURLs) == 0 {
		return []string{PlaceholderPoster}
	}
	return m.PosterURLs
}

// Synopsis prefers the description, then the plot summary.
func (m Movie) Synopsis() string {
	switch {
	case m.Description != "":
		return m.Description
	case m.PlotSummary != "":
		return m.PlotSummary
	default:
		return "No description available."
	}
}

// AgeBadge is the certificate shown on cards: the age restriction, or the
// rating when no restriction is set.
func (m Movie) AgeBadge() string {
	if m.AgeRestriction != "" {
		return m.AgeRestriction
	}
	return m.Rating
}

// Bookable reports whether tickets can be bought right now.
func (m Movie) Bookable() bool {
	return m.StateOfMovie == StatusNowShowing
}
