package scheduling

import (
	"errors"
	"net/http"

	schedulingdomain "club-app-go/internal/domain/scheduling"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(r, dst)
}

func (h *Handlers) writeSchedulingError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.log.WithContext(r.Context())
	switch {
	case errors.Is(err, schedulingdomain.ErrForbidden):
		log.BusinessError(op+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, schedulingdomain.ErrInvalidInput):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, schedulingdomain.ErrInvalidStatus):
		log.BusinessError(op+": invalid status", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_status", "status must be present or absent")
	case errors.Is(err, schedulingdomain.ErrRangeTooLong):
		log.BusinessError(op+": range too long", err, args...)
		writeError(w, http.StatusBadRequest, "range_too_long", err.Error())
	case errors.Is(err, schedulingdomain.ErrCategoryNotFound):
		log.BusinessError(op+": category not found", err, args...)
		writeError(w, http.StatusNotFound, "category_not_found", "category not found")
	case errors.Is(err, schedulingdomain.ErrScheduleNotFound):
		log.BusinessError(op+": schedule not found", err, args...)
		writeError(w, http.StatusNotFound, "schedule_not_found", "schedule not found")
	case errors.Is(err, schedulingdomain.ErrSessionNotFound):
		log.BusinessError(op+": session not found", err, args...)
		writeError(w, http.StatusNotFound, "session_not_found", "session not found")
	case errors.Is(err, schedulingdomain.ErrEventNotFound):
		log.BusinessError(op+": event not found", err, args...)
		writeError(w, http.StatusNotFound, "event_not_found", "event not found")
	default:
		log.InternalError(op+": failed", err, args...)
		commonhandler.InternalError(w)
	}
}
