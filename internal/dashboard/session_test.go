package dashboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/chart"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/websocket"
)

type fakeRepo struct {
	mu         sync.Mutex
	calls      []model.CallRecord
	totals     []int
	listCount  int
	lastFilter model.CallFilter
	lastPage   int

	listErr    error
	statsErr   error
	dailyErr   error
	outcomeErr error
	hourlyErr  error

	daily    []model.DailyStat
	outcomes []model.OutcomeStat
	hourly   []model.HourlyStat
}

func (f *fakeRepo) ListCalls(filter model.CallFilter, page int) (*model.CallPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCount++
	f.lastFilter = filter
	f.lastPage = page
	if f.listErr != nil {
		return nil, f.listErr
	}
	total := 0
	if len(f.totals) > 0 {
		total = f.totals[0]
		if len(f.totals) > 1 {
			f.totals = f.totals[1:]
		}
	}
	return &model.CallPage{Calls: f.calls, Total: total}, nil
}

func (f *fakeRepo) Stats(filter model.CallFilter) (*model.CallStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &model.CallStats{TotalCalls: 42, SuccessfulCalls: 21, SuccessRate: 50}, nil
}

func (f *fakeRepo) DailyStats(filter model.CallFilter) ([]model.DailyStat, error) {
	return f.daily, f.dailyErr
}

func (f *fakeRepo) OutcomeStats(filter model.CallFilter) ([]model.OutcomeStat, error) {
	return f.outcomes, f.outcomeErr
}

func (f *fakeRepo) HourlyStats(filter model.CallFilter) ([]model.HourlyStat, error) {
	return f.hourly, f.hourlyErr
}

func (f *fakeRepo) TopCustomers(filter model.CallFilter, limit int) ([]model.CustomerSummary, error) {
	return nil, nil
}

type fakeSender struct {
	mu     sync.Mutex
	frames []websocket.Message
	ch     chan websocket.Message
}

func (f *fakeSender) Push(msg websocket.Message) bool {
	f.mu.Lock()
	f.frames = append(f.frames, msg)
	f.mu.Unlock()
	if f.ch != nil {
		f.ch <- msg
	}
	return true
}

func (f *fakeSender) byType(msgType string) []websocket.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []websocket.Message
	for _, m := range f.frames {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) last(t *testing.T, msgType string) websocket.Message {
	t.Helper()
	frames := f.byType(msgType)
	require.NotEmpty(t, frames, "no %q frame pushed", msgType)
	return frames[len(frames)-1]
}

func TestRunPushesInitialSnapshotAndStopsOnClose(t *testing.T) {
	repo := &fakeRepo{totals: []int{25}}
	sender := &fakeSender{ch: make(chan websocket.Message, 16)}
	sess := NewSession(repo, sender)

	done := make(chan struct{})
	go func() {
		sess.Run()
		close(done)
	}()

	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case msg := <-sender.ch:
			seen[msg.Type] = true
		case <-timeout:
			t.Fatalf("initial snapshot incomplete, saw %v", seen)
		}
	}
	assert.True(t, seen["records"] && seen["stats"] && seen["charts"])

	sess.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after Close")
	}
}

func TestSetFilterResetsPageAndRefetchesEverything(t *testing.T) {
	repo := &fakeRepo{totals: []int{200}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshRecords()
	require.Equal(t, 20, sess.totalPages)

	sess.apply(Command{Action: "set_page", Page: 5})
	require.Equal(t, 5, sess.page)

	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{Outcome: "booked"}})

	assert.Equal(t, 1, sess.page, "changing the filter rewinds to page 1")
	assert.Equal(t, "booked", repo.lastFilter.Outcome)
	assert.NotEmpty(t, sender.byType("records"))
	assert.NotEmpty(t, sender.byType("stats"))
	assert.NotEmpty(t, sender.byType("charts"))
}

func TestSetFilterReplacesWholesale(t *testing.T) {
	repo := &fakeRepo{totals: []int{10}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{
		Outcome:        "booked",
		CustomerNumber: "555",
	}})
	require.Equal(t, "booked", repo.lastFilter.Outcome)
	require.Equal(t, "555", repo.lastFilter.CustomerNumber)

	// A new filter with only a customer number drops the outcome too.
	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{
		CustomerNumber: "917",
	}})
	assert.Empty(t, repo.lastFilter.Outcome)
	assert.Equal(t, "917", repo.lastFilter.CustomerNumber)
}

func TestSetFilterInvalidPushesErrorAndKeepsState(t *testing.T) {
	repo := &fakeRepo{totals: []int{10}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{Outcome: "booked"}})
	before := repo.lastFilter

	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{DateFrom: "garbage"}})

	assert.NotEmpty(t, sender.byType("error"))
	assert.Equal(t, before, sess.filter, "invalid input leaves the filter untouched")
}

func TestSetPageClampsIntoRange(t *testing.T) {
	repo := &fakeRepo{totals: []int{25}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshRecords()
	require.Equal(t, 3, sess.totalPages)

	sess.apply(Command{Action: "set_page", Page: 99})
	assert.Equal(t, 3, sess.page)

	sess.apply(Command{Action: "set_page", Page: 0})
	assert.Equal(t, 1, sess.page)
}

func TestRefreshRecordsClampsAfterShrink(t *testing.T) {
	repo := &fakeRepo{totals: []int{50, 50, 11, 11}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshRecords()
	require.Equal(t, 5, sess.totalPages)

	sess.apply(Command{Action: "set_page", Page: 5})
	require.Equal(t, 5, sess.page)

	// The data set shrank to 11 rows; page 5 no longer exists.
	sess.refreshRecords()

	assert.Equal(t, 2, sess.page)
	last := sender.last(t, "records")
	payload, ok := last.Data.(RecordsPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Pagination.Page)
	assert.Equal(t, 2, payload.Pagination.TotalPages)
}

func TestRecordsFailurePushesErrorFrame(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("connection refused")}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshRecords()

	errs := sender.byType("error")
	require.Len(t, errs, 1)
	assert.Equal(t, "Failed to load call records", errs[0].Message)
	assert.Empty(t, sender.byType("records"))
}

func TestStatsFailurePushesZeros(t *testing.T) {
	repo := &fakeRepo{statsErr: errors.New("timeout")}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshStats()

	frame := sender.last(t, "stats")
	stats, ok := frame.Data.(*model.CallStats)
	require.True(t, ok)
	assert.Zero(t, stats.TotalCalls)
	assert.Zero(t, stats.SuccessRate)
	assert.Empty(t, sender.byType("error"), "stats failures stay silent")
}

func TestChartsPartialFailure(t *testing.T) {
	repo := &fakeRepo{
		dailyErr: errors.New("timeout"),
		hourly:   []model.HourlyStat{{Hour: 9, Count: 4}},
		outcomes: []model.OutcomeStat{{Outcome: "booked", Count: 4}},
	}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshCharts()

	frame := sender.last(t, "charts")
	data, ok := frame.Data.(chart.Data)
	require.True(t, ok)
	assert.Empty(t, data.Daily, "failed collection renders empty")
	assert.Len(t, data.Hourly, 24)
	assert.Equal(t, 4, data.Hourly[9].Count)
	require.Len(t, data.Outcomes, 1)
	assert.Empty(t, sender.byType("error"), "chart failures stay silent")
}

func TestQueuedCommandsCoalesceIntoOneFetch(t *testing.T) {
	repo := &fakeRepo{totals: []int{10}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.cmds <- Command{Action: "set_filter", Filter: &model.FilterParams{Outcome: "failed"}}
	sess.cmds <- Command{Action: "set_filter", Filter: &model.FilterParams{Outcome: "booked"}}

	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{Outcome: "no_answer"}})

	assert.Equal(t, 1, repo.listCount, "three rapid filter changes collapse into one query round")
	assert.Equal(t, "booked", repo.lastFilter.Outcome, "only the newest filter is ever queried")
}

func TestFramesCarryRevision(t *testing.T) {
	repo := &fakeRepo{totals: []int{10}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.refreshRecords()
	first := sender.last(t, "records")

	sess.apply(Command{Action: "set_filter", Filter: &model.FilterParams{Outcome: "booked"}})
	second := sender.last(t, "records")

	assert.Greater(t, second.Rev, first.Rev)
}

func TestHandleMessageRoutesCommands(t *testing.T) {
	repo := &fakeRepo{totals: []int{10}}
	sender := &fakeSender{}
	sess := NewSession(repo, sender)

	sess.HandleMessage([]byte(`{"action":"set_filter","filter":{"outcome":"booked"}}`))

	select {
	case cmd := <-sess.cmds:
		assert.Equal(t, "set_filter", cmd.Action)
		require.NotNil(t, cmd.Filter)
		assert.Equal(t, "booked", cmd.Filter.Outcome)
	default:
		t.Fatal("command was not queued")
	}

	// Malformed frames are dropped without queueing anything.
	sess.HandleMessage([]byte(`{not json`))
	select {
	case cmd := <-sess.cmds:
		t.Fatalf("unexpected queued command %+v", cmd)
	default:
	}
}
