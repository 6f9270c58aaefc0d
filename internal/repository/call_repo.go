package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
)

// CallRepository is the dashboard's query surface. Handlers and live
// sessions depend on this interface so tests can swap in fakes.
type CallRepository interface {
	ListCalls(filter model.CallFilter, page int) (*model.CallPage, error)
	Stats(filter model.CallFilter) (*model.CallStats, error)
	DailyStats(filter model.CallFilter) ([]model.DailyStat, error)
	OutcomeStats(filter model.CallFilter) ([]model.OutcomeStat, error)
	HourlyStats(filter model.CallFilter) ([]model.HourlyStat, error)
	TopCustomers(filter model.CallFilter, limit int) ([]model.CustomerSummary, error)
}

type PostgresCallRepository struct {
	DB *sql.DB
}

func NewCallRepository(db *sql.DB) *PostgresCallRepository {
	return &PostgresCallRepository{DB: db}
}

// likeEscaper neutralizes LIKE wildcards in user-supplied substrings.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterClause compiles a CallFilter into a WHERE fragment with positional
// args. The fragment is empty when the filter is zero. DateTo is inclusive:
// the condition uses the first instant of the following day.
func filterClause(f model.CallFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Outcome != "" {
		args = append(args, f.Outcome)
		conds = append(conds, fmt.Sprintf("outcome = $%d", len(args)))
	}
	if !f.DateFrom.IsZero() {
		args = append(args, f.DateFrom)
		conds = append(conds, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if !f.DateTo.IsZero() {
		args = append(args, f.DateToExclusive())
		conds = append(conds, fmt.Sprintf("started_at < $%d", len(args)))
	}
	if f.CustomerNumber != "" {
		args = append(args, "%"+likeEscaper.Replace(f.CustomerNumber)+"%")
		conds = append(conds, fmt.Sprintf("customer_number ILIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresCallRepository) ListCalls(filter model.CallFilter, page int) (*model.CallPage, error) {
	where, args := filterClause(filter)

	result := &model.CallPage{Calls: []model.CallRecord{}}
	err := r.DB.QueryRow("SELECT COUNT(*) FROM calls"+where, args...).Scan(&result.Total)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`
		SELECT id, customer_number, started_at, duration_minutes, outcome, cost, recording_url, summary
		FROM calls%s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := r.DB.Query(query, append(args, model.PageSize, (page-1)*model.PageSize)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c model.CallRecord
		var recording, summary sql.NullString
		if err := rows.Scan(&c.ID, &c.CustomerNumber, &c.Timestamp, &c.DurationMinutes, &c.Outcome, &c.Cost, &recording, &summary); err != nil {
			return nil, err
		}
		c.RecordingURL = recording.String
		c.Summary = summary.String
		result.Calls = append(result.Calls, c)
	}
	return result, rows.Err()
}

func (r *PostgresCallRepository) Stats(filter model.CallFilter) (*model.CallStats, error) {
	where, args := filterClause(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*),
			COALESCE(SUM(cost), 0),
			COALESCE(SUM(duration_minutes), 0),
			COALESCE(SUM(CASE WHEN outcome = ANY($%d) THEN 1 ELSE 0 END), 0)
		FROM calls%s`, len(args)+1, where)

	stats := &model.CallStats{}
	err := r.DB.QueryRow(query, append(args, pq.Array(model.SuccessOutcomes))...).Scan(
		&stats.TotalCalls,
		&stats.TotalCost,
		&stats.TotalMinutes,
		&stats.SuccessfulCalls,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.SuccessfulCalls) / float64(stats.TotalCalls) * 100
	}
	return stats, nil
}

// DailyStats returns per-day roll-ups, newest day first, capped at a year.
func (r *PostgresCallRepository) DailyStats(filter model.CallFilter) ([]model.DailyStat, error) {
	where, args := filterClause(filter)

	query := fmt.Sprintf(`
		SELECT to_char(started_at AT TIME ZONE '%s', 'YYYY-MM-DD') AS day,
			COUNT(*), COALESCE(SUM(cost), 0), COALESCE(SUM(duration_minutes), 0)
		FROM calls%s
		GROUP BY day
		ORDER BY day DESC
		LIMIT 365`, model.DisplayZoneName, where)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []model.DailyStat
	for rows.Next() {
		var d model.DailyStat
		if err := rows.Scan(&d.Date, &d.Count, &d.Cost, &d.Minutes); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *PostgresCallRepository) OutcomeStats(filter model.CallFilter) ([]model.OutcomeStat, error) {
	where, args := filterClause(filter)

	query := fmt.Sprintf(`
		SELECT outcome, COUNT(*)
		FROM calls%s
		GROUP BY outcome
		ORDER BY COUNT(*) DESC, outcome ASC`, where)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []model.OutcomeStat
	for rows.Next() {
		var o model.OutcomeStat
		if err := rows.Scan(&o.Outcome, &o.Count); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// HourlyStats returns sparse hour-of-day buckets in the display zone.
// Hours with no calls are absent; the chart layer fills them in.
func (r *PostgresCallRepository) HourlyStats(filter model.CallFilter) ([]model.HourlyStat, error) {
	where, args := filterClause(filter)

	query := fmt.Sprintf(`
		SELECT EXTRACT(HOUR FROM started_at AT TIME ZONE '%s')::int AS hour, COUNT(*)
		FROM calls%s
		GROUP BY hour
		ORDER BY hour ASC`, model.DisplayZoneName, where)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []model.HourlyStat
	for rows.Next() {
		var h model.HourlyStat
		if err := rows.Scan(&h.Hour, &h.Count); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

func (r *PostgresCallRepository) TopCustomers(filter model.CallFilter, limit int) ([]model.CustomerSummary, error) {
	if limit < 1 {
		limit = 10
	}
	where, args := filterClause(filter)

	query := fmt.Sprintf(`
		SELECT customer_number, COUNT(*) AS call_count, MAX(started_at) AS last_call
		FROM calls%s
		GROUP BY customer_number
		ORDER BY call_count DESC, last_call DESC
		LIMIT $%d`, where, len(args)+1)

	rows, err := r.DB.Query(query, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []model.CustomerSummary
	for rows.Next() {
		var c model.CustomerSummary
		if err := rows.Scan(&c.CustomerNumber, &c.CallCount, &c.LastCall); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// InsertCall records one call. Used by the seed command; the dashboard
// itself never writes.
func (r *PostgresCallRepository) InsertCall(c *model.CallRecord) error {
	query := `
		INSERT INTO calls (customer_number, started_at, duration_minutes, outcome, cost, recording_url, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(query,
		c.CustomerNumber,
		c.Timestamp,
		c.DurationMinutes,
		c.Outcome,
		c.Cost,
		nullIfEmpty(c.RecordingURL),
		nullIfEmpty(c.Summary),
	)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
