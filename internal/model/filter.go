package model

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CallFilter narrows every dashboard query. The zero value matches all
// calls. Date bounds are midnights in DisplayZone; DateTo is inclusive.
type CallFilter struct {
	Outcome        string
	DateFrom       time.Time
	DateTo         time.Time
	CustomerNumber string
}

// FilterParams is the wire form of a filter: civil dates as YYYY-MM-DD
// strings, empty string means unset.
type FilterParams struct {
	Outcome        string `json:"outcome"`
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
	CustomerNumber string `json:"customer_number"`
}

// ParseFilter validates wire params and converts them into a CallFilter.
func ParseFilter(p FilterParams) (CallFilter, error) {
	f := CallFilter{CustomerNumber: strings.TrimSpace(p.CustomerNumber)}

	if outcome := strings.TrimSpace(p.Outcome); outcome != "" {
		if !ValidOutcome(outcome) {
			return CallFilter{}, fmt.Errorf("unknown outcome %q", outcome)
		}
		f.Outcome = outcome
	}
	if p.DateFrom != "" {
		t, err := time.ParseInLocation(dateLayout, p.DateFrom, DisplayZone)
		if err != nil {
			return CallFilter{}, fmt.Errorf("invalid date_from: %w", err)
		}
		f.DateFrom = t
	}
	if p.DateTo != "" {
		t, err := time.ParseInLocation(dateLayout, p.DateTo, DisplayZone)
		if err != nil {
			return CallFilter{}, fmt.Errorf("invalid date_to: %w", err)
		}
		f.DateTo = t
	}
	return f, nil
}

// DateToExclusive returns the first instant after the inclusive DateTo day.
// AddDate keeps the boundary on midnight across DST transitions.
func (f CallFilter) DateToExclusive() time.Time {
	if f.DateTo.IsZero() {
		return time.Time{}
	}
	return f.DateTo.AddDate(0, 0, 1)
}
