// Package model contains the movie record shared by the gateway, the views and
// the presentation layers. The record is passed through the core untouched.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status describes where a movie is in its theatrical run. "type X string"
// keeps the JSON wire value while giving the compiler a distinct type.
type Status string

const (
	StatusNowShowing Status = "NOW_SHOWING"
	StatusComingSoon Status = "COMING_SOON"
	StatusEnded      Status = "ENDED"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusNowShowing, StatusComingSoon, StatusEnded}

// Label returns the human readable name. Unknown values are shown verbatim.
func (s Status) Label() string {
	switch s {
	case StatusNowShowing:
		return "Now Showing"
	case StatusComingSoon:
		return "Coming Soon"
	case StatusEnded:
		return "Ended"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNowShowing, StatusComingSoon, StatusEnded:
		return true
	}
	return false
}

// ID is the backend identifier. The backend emits numbers, but the front end
// only ever echoes the value back in URLs, so it is kept as an opaque string.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers as numbers so the backend sees the
// same shape it produced.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Movie is a catalog entry as served by /api/v1/cinemas.
type Movie struct {
	ID                   ID       `json:"id,omitempty"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Genre                string   `json:"genre"`
	Duration             int      `json:"duration"`
	Rating               string   `json:"rating"`
	ReleaseDate          Date     `json:"releaseDate"`
	Director             string   `json:"director"`
	Producer             string   `json:"producer"`
	Writer               string   `json:"writer"`
	AverageRating        float64  `json:"averageRating"`
	StateOfMovie         Status   `json:"stateOfMovie"`
	AgeRestriction       string   `json:"ageRestriction"`
	PlotSummary          string   `json:"plotSummary"`
	BasePrice            float64  `json:"basePrice"`
	BookingStartDate     Date     `json:"bookingStartDate"`
	BookingEndDate       Date     `json:"bookingEndDate"`
	AvailableAtLocations []string `json:"availableAtLocations"`
	Cast                 []string `json:"cast"`
	TotalBookings        int      `json:"totalBookings"`
	PosterURLs           []string `json:"posterUrls,omitempty"`
	TrailerURL           string   `json:"trailerUrl,omitempty"`
}

// Genres splits the comma-delimited genre field into trimmed, non-empty tokens.
func (m Movie) Genres() []string {
	return SplitList(m.Genre)
}

// HasGenre reports whether genre is one of the movie's genre tokens.
func (m Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres() {
		if g == genre {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated string, trimming whitespace and dropping
// empty items. A blank input yields an empty, non-nil slice.
func SplitList(s string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
