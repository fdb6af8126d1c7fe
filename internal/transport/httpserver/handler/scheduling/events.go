package scheduling

import (
	"net/http"
	"time"

	schedulingdomain "club-app-go/internal/domain/scheduling"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

type createEventRequest struct {
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	Location     string     `json:"location"`
	DisciplineID *int64     `json:"discipline_id"`
	CategoryID   *int64     `json:"category_id"`
}

type eventResponse struct {
	ID           int64      `json:"id"`
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	Location     string     `json:"location"`
	DisciplineID *int64     `json:"discipline_id"`
	CategoryID   *int64     `json:"category_id"`
}

func toEventResponse(event schedulingdomain.Event) eventResponse {
	return eventResponse{
		ID:           event.ID,
		Kind:         string(event.Kind),
		Title:        event.Title,
		Description:  event.Description,
		StartsAt:     event.StartsAt,
		EndsAt:       event.EndsAt,
		Location:     event.Location,
		DisciplineID: event.DisciplineID,
		CategoryID:   event.CategoryID,
	}
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	event, err := h.Scheduling.CreateEvent(r.Context(), actor, schedulingdomain.CreateEventInput{
		Kind:         schedulingdomain.EventKind(req.Kind),
		Title:        req.Title,
		Description:  req.Description,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Location:     req.Location,
		DisciplineID: req.DisciplineID,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		h.writeSchedulingError(w, r, "events.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

func (h *Handlers) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	days, err := commonhandler.ParseIntParam(query.Get("days"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid days")
		return
	}
	categoryID, err := commonhandler.ParseOptionalID(query.Get("category_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid category_id")
		return
	}

	events, err := h.Scheduling.UpcomingEvents(r.Context(), days, categoryID)
	if err != nil {
		h.writeSchedulingError(w, r, "events.upcoming", err)
		return
	}
	response := make([]eventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, response)
}
