package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/dashboard"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/pagination"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/repository"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/utils"
)

// CallHandler serves REST snapshots of the dashboard data. The websocket
// session pushes the same payload shapes.
type CallHandler struct {
	Repo repository.CallRepository
}

func NewCallHandler(repo repository.CallRepository) *CallHandler {
	return &CallHandler{Repo: repo}
}

// parseQueryFilter reads the filter params shared by every dashboard route.
func parseQueryFilter(r *http.Request) (model.CallFilter, error) {
	q := r.URL.Query()
	return model.ParseFilter(model.FilterParams{
		Outcome:        q.Get("outcome"),
		DateFrom:       q.Get("date_from"),
		DateTo:         q.Get("date_to"),
		CustomerNumber: q.Get("customer_number"),
	})
}

func (h *CallHandler) GetCalls(w http.ResponseWriter, r *http.Request) {
	filter, err := parseQueryFilter(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := h.Repo.ListCalls(filter, page)
	if err != nil {
		logrus.Errorf("Call list query failed: %v", err)
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to load call records")
		return
	}

	utils.SuccessResponse(w, http.StatusOK, dashboard.RecordsPayload{
		Calls:      result.Calls,
		Pagination: pagination.NewMeta(page, result.Total),
	}, "")
}

func (h *CallHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseQueryFilter(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.Repo.Stats(filter)
	if err != nil {
		// Stat cards degrade to zeros rather than erroring.
		logrus.Errorf("Stats query failed: %v", err)
		stats = &model.CallStats{}
	}

	utils.SuccessResponse(w, http.StatusOK, stats, "")
}

func (h *CallHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseQueryFilter(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(w, http.StatusOK, dashboard.BuildCharts(h.Repo, filter), "")
}

func (h *CallHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseQueryFilter(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	customers, err := h.Repo.TopCustomers(filter, limit)
	if err != nil {
		logrus.Errorf("Top customers query failed: %v", err)
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to load customers")
		return
	}
	if customers == nil {
		customers = []model.CustomerSummary{}
	}

	utils.SuccessResponse(w, http.StatusOK, customers, "")
}
