package dashboard

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/chart"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/pagination"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/repository"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/websocket"
)

// Refresh cadence per data category.
const (
	recordsInterval = 30 * time.Second
	statsInterval   = 60 * time.Second
	chartsInterval  = 120 * time.Second
)

// Sender is where the session pushes its frames. *websocket.Client
// satisfies it.
type Sender interface {
	Push(msg websocket.Message) bool
}

// Command is one inbound control frame.
//
//	{"action":"set_filter","filter":{"outcome":"booked","date_from":"2025-03-01"}}
//	{"action":"set_page","page":3}
//	{"action":"refresh"}
type Command struct {
	Action string              `json:"action"`
	Filter *model.FilterParams `json:"filter,omitempty"`
	Page   int                 `json:"page,omitempty"`
}

// RecordsPayload is the body of a records frame and of the REST call list.
type RecordsPayload struct {
	Calls      []model.CallRecord `json:"calls"`
	Pagination pagination.Meta    `json:"pagination"`
}

// Session owns one dashboard's filter and current page. Everything runs on
// the Run goroutine: commands, ticker refreshes and the queries themselves,
// so state changes are strictly ordered. The revision counter bumps on every
// filter or page change and tags every outbound frame, letting a client
// discard frames that predate its newest applied state.
type Session struct {
	repo    repository.CallRepository
	send    Sender
	cmds    chan Command
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	filter     model.CallFilter
	page       int
	totalPages int
	rev        uint64
}

func NewSession(repo repository.CallRepository, send Sender) *Session {
	return &Session{
		repo:    repo,
		send:    send,
		cmds:    make(chan Command, 16),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		page:    1,
	}
}

// HandleMessage ingests one control frame from the connection's read pump.
func (s *Session) HandleMessage(raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		logrus.Warnf("Dashboard session received a malformed command: %v", err)
		return
	}
	select {
	case s.cmds <- cmd:
	default:
		logrus.Warnf("Dashboard session command queue full, dropping %q", cmd.Action)
	}
}

// Close stops the run loop and waits for it to exit, so the caller can
// safely tear down the send channel afterwards.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

// Run drives the session until Close: an immediate full snapshot, then
// records every 30s, statistics every 60s and charts every 120s, with
// inbound commands re-fetching what they touch right away.
func (s *Session) Run() {
	defer close(s.stopped)

	recordsTicker := time.NewTicker(recordsInterval)
	statsTicker := time.NewTicker(statsInterval)
	chartsTicker := time.NewTicker(chartsInterval)
	defer recordsTicker.Stop()
	defer statsTicker.Stop()
	defer chartsTicker.Stop()

	s.refreshRecords()
	s.refreshStats()
	s.refreshCharts()

	for {
		select {
		case cmd := <-s.cmds:
			s.apply(cmd)
		case <-recordsTicker.C:
			s.refreshRecords()
		case <-statsTicker.C:
			s.refreshStats()
		case <-chartsTicker.C:
			s.refreshCharts()
		case <-s.done:
			return
		}
	}
}

// apply executes the command plus anything else already queued, then
// fetches once per touched category. Rapid changes collapse into a single
// query round against the newest state only.
func (s *Session) apply(first Command) {
	queued := []Command{first}
drain:
	for {
		select {
		case cmd := <-s.cmds:
			queued = append(queued, cmd)
		default:
			break drain
		}
	}

	var records, stats, charts bool
	for _, cmd := range queued {
		switch cmd.Action {
		case "set_filter":
			if err := s.setFilter(cmd); err != nil {
				s.pushError(err.Error())
				continue
			}
			records, stats, charts = true, true, true
		case "set_page":
			s.setPage(cmd.Page)
			records = true
		case "refresh":
			records, stats, charts = true, true, true
		default:
			logrus.Warnf("Dashboard session ignoring unknown action %q", cmd.Action)
		}
	}

	if records {
		s.refreshRecords()
	}
	if stats {
		s.refreshStats()
	}
	if charts {
		s.refreshCharts()
	}
}

// setFilter replaces the filter wholesale and rewinds to the first page.
func (s *Session) setFilter(cmd Command) error {
	var params model.FilterParams
	if cmd.Filter != nil {
		params = *cmd.Filter
	}
	filter, err := model.ParseFilter(params)
	if err != nil {
		return err
	}
	s.filter = filter
	s.page = 1
	s.rev++
	return nil
}

func (s *Session) setPage(page int) {
	s.page = pagination.Clamp(page, s.totalPages)
	s.rev++
}

func (s *Session) refreshRecords() {
	result, err := s.repo.ListCalls(s.filter, s.page)
	if err != nil {
		logrus.Errorf("Dashboard records query failed: %v", err)
		s.pushError("Failed to load call records")
		return
	}

	s.totalPages = pagination.TotalPages(result.Total)
	if clamped := pagination.Clamp(s.page, s.totalPages); clamped != s.page {
		// The result set shrank under us; land on the last page.
		s.page = clamped
		result, err = s.repo.ListCalls(s.filter, s.page)
		if err != nil {
			logrus.Errorf("Dashboard records query failed: %v", err)
			s.pushError("Failed to load call records")
			return
		}
	}

	s.push(websocket.Message{
		Type: "records",
		Rev:  s.rev,
		Data: RecordsPayload{
			Calls:      result.Calls,
			Pagination: pagination.NewMeta(s.page, result.Total),
		},
	})
}

func (s *Session) refreshStats() {
	stats, err := s.repo.Stats(s.filter)
	if err != nil {
		// Stat cards degrade to zeros rather than surfacing an error.
		logrus.Errorf("Dashboard stats query failed: %v", err)
		stats = &model.CallStats{}
	}
	s.push(websocket.Message{Type: "stats", Rev: s.rev, Data: stats})
}

func (s *Session) refreshCharts() {
	s.push(websocket.Message{Type: "charts", Rev: s.rev, Data: BuildCharts(s.repo, s.filter)})
}

// BuildCharts runs the three chart queries independently. A failing
// collection renders empty while the others still populate. The REST charts
// endpoint serves the same payload.
func BuildCharts(repo repository.CallRepository, filter model.CallFilter) chart.Data {
	data := chart.Empty()

	if daily, err := repo.DailyStats(filter); err != nil {
		logrus.Errorf("Daily chart query failed: %v", err)
	} else {
		data.Daily = chart.DailySeries(daily)
	}

	if outcomes, err := repo.OutcomeStats(filter); err != nil {
		logrus.Errorf("Outcome chart query failed: %v", err)
	} else {
		data.Outcomes = chart.OutcomeSeries(outcomes)
	}

	if hourly, err := repo.HourlyStats(filter); err != nil {
		logrus.Errorf("Hourly chart query failed: %v", err)
	} else {
		data.Hourly = chart.HourlySeries(hourly)
	}

	return data
}

func (s *Session) pushError(message string) {
	s.push(websocket.Message{Type: "error", Rev: s.rev, Message: message})
}

func (s *Session) push(msg websocket.Message) {
	if !s.send.Push(msg) {
		logrus.Warnf("Dashboard frame %q dropped: send queue full", msg.Type)
	}
}
