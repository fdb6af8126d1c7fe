package members

import (
	"errors"
	"net/http"
	"time"

	billingdomain "club-app-go/internal/domain/billing"
	identitydomain "club-app-go/internal/domain/identity"
	membershipdomain "club-app-go/internal/domain/membership"
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

type profileResponse struct {
	MemberID           int64      `json:"member_id"`
	State              string     `json:"state"`
	LevelID            *int64     `json:"level_id"`
	DisciplineID       *int64     `json:"discipline_id"`
	CategoryID         *int64     `json:"category_id"`
	DeactivatedAt      *time.Time `json:"deactivated_at"`
	DeactivationReason *string    `json:"deactivation_reason"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type dueResponse struct {
	ID      int64   `json:"id"`
	Period  string  `json:"period"`
	Amount  float64 `json:"amount"`
	DueDate string  `json:"due_date"`
}

type debtErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	TotalDebt       float64       `json:"total_debt"`
	OutstandingDues []dueResponse `json:"outstanding_dues"`
}

func toProfileResponse(profile membershipdomain.Profile) profileResponse {
	return profileResponse{
		MemberID:           profile.MemberID,
		State:              string(profile.State),
		LevelID:            profile.LevelID,
		DisciplineID:       profile.DisciplineID,
		CategoryID:         profile.CategoryID,
		DeactivatedAt:      profile.DeactivatedAt,
		DeactivationReason: profile.DeactivationReason,
		UpdatedAt:          profile.UpdatedAt,
	}
}

func toDueResponses(dues []billingdomain.Due) []dueResponse {
	response := make([]dueResponse, 0, len(dues))
	for _, due := range dues {
		response = append(response, dueResponse{
			ID:      due.ID,
			Period:  due.Period,
			Amount:  due.Amount,
			DueDate: due.DueDate.Format("2006-01-02"),
		})
	}
	return response
}

func (h *Handlers) writeMembershipError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.log.WithContext(r.Context())
	var debt *membershipdomain.OutstandingDebtError
	switch {
	case errors.As(err, &debt):
		log.BusinessError(op+": outstanding dues", err, args...)
		var response debtErrorResponse
		response.Error.Code = "outstanding_dues"
		response.Error.Message = "settle outstanding dues before reactivating"
		response.TotalDebt = debt.Total
		response.OutstandingDues = toDueResponses(debt.Dues)
		writeJSON(w, http.StatusBadRequest, response)
	case errors.Is(err, membershipdomain.ErrForbidden):
		log.BusinessError(op+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, identitydomain.ErrMemberNotFound):
		log.BusinessError(op+": member not found", err, args...)
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
	case errors.Is(err, membershipdomain.ErrNotMember):
		log.BusinessError(op+": not a member", err, args...)
		writeError(w, http.StatusBadRequest, "not_member", "member has no membership")
	case errors.Is(err, membershipdomain.ErrAlreadyActive):
		log.BusinessError(op+": already active", err, args...)
		writeError(w, http.StatusBadRequest, "already_active", "membership already active")
	case errors.Is(err, membershipdomain.ErrAlreadyInactive):
		log.BusinessError(op+": already inactive", err, args...)
		writeError(w, http.StatusBadRequest, "already_inactive", "membership already inactive")
	case errors.Is(err, membershipdomain.ErrPaymentMethodRequired):
		log.BusinessError(op+": payment method missing", err, args...)
		writeError(w, http.StatusBadRequest, "payment_method_required", "payment_method is required")
	case errors.Is(err, membershipdomain.ErrDisciplineNotFound):
		log.BusinessError(op+": discipline not found", err, args...)
		writeError(w, http.StatusBadRequest, "discipline_not_found", "discipline not found")
	case errors.Is(err, membershipdomain.ErrCategoryNotFound):
		log.BusinessError(op+": category not found", err, args...)
		writeError(w, http.StatusBadRequest, "category_not_found", "category not found")
	case errors.Is(err, membershipdomain.ErrCategoryMismatch):
		log.BusinessError(op+": category mismatch", err, args...)
		writeError(w, http.StatusBadRequest, "category_mismatch", "category does not belong to discipline")
	case errors.Is(err, membershipdomain.ErrInvalidInput):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, billingdomain.ErrDueAlreadyPaid):
		log.BusinessError(op+": due already paid", err, args...)
		writeError(w, http.StatusConflict, "due_already_paid", "a due was settled concurrently, retry")
	case errors.Is(err, membershipdomain.ErrLevelNotConfigured), errors.Is(err, membershipdomain.ErrRoleNotConfigured):
		log.InternalError(op+": configuration error", err, args...)
		writeError(w, http.StatusInternalServerError, "configuration_error", err.Error())
	default:
		log.InternalError(op+": failed", err, args...)
		commonhandler.InternalError(w)
	}
}
