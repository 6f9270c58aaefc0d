package model

import "time"

// Outcome categories recorded for every call.
const (
	OutcomeBooked    = "booked"
	OutcomeConnected = "connected"
	OutcomeNoAnswer  = "no_answer"
	OutcomeVoicemail = "voicemail"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
)

// PageSize is the fixed number of records per table page.
const PageSize = 10

// DisplayZoneName is the business timezone. Calendar-date filters, daily
// buckets and hourly buckets are all evaluated in this zone.
const DisplayZoneName = "America/New_York"

// DisplayZone is DisplayZoneName resolved once at startup. The binary embeds
// tzdata, so the lookup succeeds even on images without a zoneinfo database.
var DisplayZone = func() *time.Location {
	loc, err := time.LoadLocation(DisplayZoneName)
	if err != nil {
		panic("load display timezone: " + err.Error())
	}
	return loc
}()

// Outcomes lists every valid category, most desirable first.
var Outcomes = []string{
	OutcomeBooked,
	OutcomeConnected,
	OutcomeNoAnswer,
	OutcomeVoicemail,
	OutcomeDeclined,
	OutcomeFailed,
}

// SuccessOutcomes are the categories counted as successful calls: the
// customer was reached and the conversation completed.
var SuccessOutcomes = []string{OutcomeBooked, OutcomeConnected}

func ValidOutcome(outcome string) bool {
	for _, o := range Outcomes {
		if o == outcome {
			return true
		}
	}
	return false
}

type CallRecord struct {
	ID              int64     `json:"id"`
	CustomerNumber  string    `json:"customer_number"`
	Timestamp       time.Time `json:"timestamp"`
	DurationMinutes int       `json:"duration_minutes"`
	Outcome         string    `json:"outcome"`
	Cost            float64   `json:"cost"`
	RecordingURL    string    `json:"recording_url,omitempty"`
	Summary         string    `json:"summary,omitempty"`
}

type CallPage struct {
	Calls []CallRecord `json:"calls"`
	Total int          `json:"total"`
}
