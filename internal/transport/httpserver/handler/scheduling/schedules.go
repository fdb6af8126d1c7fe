package scheduling

import (
	"net/http"
	"time"

	schedulingdomain "club-app-go/internal/domain/scheduling"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

const dateLayout = "2006-01-02"

type createScheduleRequest struct {
	DayOfWeek *int   `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
}

type updateScheduleRequest struct {
	Active *bool `json:"active"`
}

type scheduleResponse struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Location   string `json:"location"`
	Active     bool   `json:"active"`
}

type generateSessionsRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type generateSessionsResponse struct {
	Created int `json:"created"`
}

type sessionResponse struct {
	ID         int64  `json:"id"`
	ScheduleID *int64 `json:"schedule_id"`
	CategoryID int64  `json:"category_id"`
	Date       string `json:"date"`
	State      string `json:"state"`
}

func toScheduleResponse(schedule schedulingdomain.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:         schedule.ID,
		CategoryID: schedule.CategoryID,
		DayOfWeek:  schedule.DayOfWeek,
		StartTime:  schedule.StartTime,
		EndTime:    schedule.EndTime,
		Location:   schedule.Location,
		Active:     schedule.Active,
	}
}

func toSessionResponse(session schedulingdomain.Session) sessionResponse {
	return sessionResponse{
		ID:         session.ID,
		ScheduleID: session.ScheduleID,
		CategoryID: session.CategoryID,
		Date:       session.Date.Format(dateLayout),
		State:      string(session.State),
	}
}

func (h *Handlers) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	categoryID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req createScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.DayOfWeek == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "day_of_week is required")
		return
	}

	schedule, err := h.Scheduling.CreateSchedule(r.Context(), actor, schedulingdomain.CreateScheduleInput{
		CategoryID: categoryID,
		DayOfWeek:  *req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Location:   req.Location,
	})
	if err != nil {
		h.writeSchedulingError(w, r, "schedules.create", err, "category_id", categoryID)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(*schedule))
}

func (h *Handlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	categoryID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	schedules, err := h.Scheduling.ListSchedules(r.Context(), categoryID)
	if err != nil {
		h.writeSchedulingError(w, r, "schedules.list", err, "category_id", categoryID)
		return
	}
	response := make([]scheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		response = append(response, toScheduleResponse(schedule))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	scheduleID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req updateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "active is required")
		return
	}

	schedule, err := h.Scheduling.SetScheduleActive(r.Context(), actor, scheduleID, *req.Active)
	if err != nil {
		h.writeSchedulingError(w, r, "schedules.update", err, "schedule_id", scheduleID)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(*schedule))
}

func (h *Handlers) GenerateSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	categoryID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req generateSessionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	start, err := commonhandler.ParseDateRequired(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := commonhandler.ParseDateRequired(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "end_date must be YYYY-MM-DD")
		return
	}

	created, err := h.Scheduling.GenerateSessions(r.Context(), actor, categoryID, start, end)
	if err != nil {
		h.writeSchedulingError(w, r, "sessions.generate", err, "category_id", categoryID)
		return
	}
	writeJSON(w, http.StatusCreated, generateSessionsResponse{Created: created})
}

func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	categoryID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	query := r.URL.Query()
	from, err := commonhandler.ParseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "from must be YYYY-MM-DD")
		return
	}
	to, err := commonhandler.ParseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "to must be YYYY-MM-DD")
		return
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if from != nil {
		start = *from
	}
	end := start.AddDate(0, 0, 30)
	if to != nil {
		end = *to
	}

	sessions, err := h.Scheduling.ListSessions(r.Context(), categoryID, start, end)
	if err != nil {
		h.writeSchedulingError(w, r, "sessions.list", err, "category_id", categoryID)
		return
	}
	response := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, toSessionResponse(session))
	}
	writeJSON(w, http.StatusOK, response)
}
