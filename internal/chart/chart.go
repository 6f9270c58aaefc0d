package chart

import (
	"fmt"
	"time"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
)

const (
	// maxLabelRunes caps pie slice labels before truncation kicks in.
	maxLabelRunes = 12
	// labelShareCutoff hides pie labels for slices under this share (%).
	labelShareCutoff = 5.0
)

// Data is the composite chart payload. Each collection is fetched
// independently and may be empty while the others populate.
type Data struct {
	Daily    []DailyPoint   `json:"daily"`
	Outcomes []OutcomeSlice `json:"outcomes"`
	Hourly   []HourlyPoint  `json:"hourly"`
}

// Empty returns a Data with all collections present but empty.
func Empty() Data {
	return Data{
		Daily:    []DailyPoint{},
		Outcomes: []OutcomeSlice{},
		Hourly:   []HourlyPoint{},
	}
}

// DailyPoint is one chronological bar of the daily volume chart.
type DailyPoint struct {
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Cost    float64 `json:"cost"`
	Minutes int64   `json:"minutes"`
}

// DailySeries reorders the newest-first daily roll-up into chronological
// bars and attaches short display labels.
func DailySeries(rows []model.DailyStat) []DailyPoint {
	points := make([]DailyPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		points = append(points, DailyPoint{
			Date:    row.Date,
			Label:   dayLabel(row.Date),
			Count:   row.Count,
			Cost:    row.Cost,
			Minutes: row.Minutes,
		})
	}
	return points
}

// dayLabel renders a YYYY-MM-DD bucket as a short date. Parsing in
// DisplayZone keeps the label on the same civil day as the bucket.
func dayLabel(date string) string {
	t, err := time.ParseInLocation("2006-01-02", date, model.DisplayZone)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

// HourlyPoint is one hour-of-day histogram bucket.
type HourlyPoint struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// HourlySeries densifies sparse hour buckets into all 24 hours of the day,
// missing hours counting zero. Buckets outside 0-23 are dropped.
func HourlySeries(rows []model.HourlyStat) []HourlyPoint {
	var counts [24]int
	for _, row := range rows {
		if row.Hour < 0 || row.Hour > 23 {
			continue
		}
		counts[row.Hour] = row.Count
	}
	points := make([]HourlyPoint, 24)
	for h := range points {
		points[h] = HourlyPoint{
			Hour:  h,
			Label: fmt.Sprintf("%02d:00", h),
			Count: counts[h],
		}
	}
	return points
}

// OutcomeSlice is one slice of the outcome distribution pie.
type OutcomeSlice struct {
	Outcome      string  `json:"outcome"`
	Label        string  `json:"label"`
	Count        int     `json:"count"`
	Share        float64 `json:"share"`
	LabelVisible bool    `json:"label_visible"`
}

// OutcomeSeries converts the outcome distribution into pie slices. Labels
// longer than 12 characters are truncated with a trailing ellipsis, and
// slices under a 5% share get their label hidden.
func OutcomeSeries(rows []model.OutcomeStat) []OutcomeSlice {
	total := 0
	for _, row := range rows {
		total += row.Count
	}

	slices := make([]OutcomeSlice, 0, len(rows))
	for _, row := range rows {
		share := 0.0
		if total > 0 {
			share = float64(row.Count) / float64(total) * 100
		}
		slices = append(slices, OutcomeSlice{
			Outcome:      row.Outcome,
			Label:        truncateLabel(row.Outcome, maxLabelRunes),
			Count:        row.Count,
			Share:        share,
			LabelVisible: share >= labelShareCutoff,
		})
	}
	return slices
}

// truncateLabel shortens s to maxRunes runes plus "..." when longer.
func truncateLabel(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
