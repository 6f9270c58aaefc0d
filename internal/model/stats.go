package model

import "time"

// CallStats backs the summary cards. SuccessRate is a percentage and stays
// zero when no calls match.
type CallStats struct {
	TotalCalls      int     `json:"total_calls"`
	TotalCost       float64 `json:"total_cost"`
	TotalMinutes    int64   `json:"total_minutes"`
	SuccessfulCalls int     `json:"successful_calls"`
	SuccessRate     float64 `json:"success_rate"`
}

// DailyStat is one business-zone day of the daily roll-up.
type DailyStat struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Cost    float64 `json:"cost"`
	Minutes int64   `json:"minutes"`
}

type OutcomeStat struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// HourlyStat is a business-zone hour-of-day bucket, 0 through 23.
type HourlyStat struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type CustomerSummary struct {
	CustomerNumber string    `json:"customer_number"`
	CallCount      int       `json:"call_count"`
	LastCall       time.Time `json:"last_call"`
}
