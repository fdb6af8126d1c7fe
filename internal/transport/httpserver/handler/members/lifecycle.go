package members

import (
	"net/http"
	"strings"

	membershipdomain "club-app-go/internal/domain/membership"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

type enrollResponse struct {
	Outcome string          `json:"outcome"`
	Profile profileResponse `json:"profile"`
}

type deactivateRequest struct {
	Reason string `json:"reason"`
}

type adminActivateRequest struct {
	PaymentMethod string `json:"payment_method"`
	ReceiptRef    string `json:"receipt_ref"`
}

type adminActivateResponse struct {
	Profile            profileResponse `json:"profile"`
	PaymentsRegistered int             `json:"payments_registered"`
	DebtCleared        float64         `json:"debt_cleared"`
	SettledDues        []dueResponse   `json:"settled_dues"`
}

type sportProfileRequest struct {
	DisciplineID int64 `json:"discipline_id"`
	CategoryID   int64 `json:"category_id"`
}

func (h *Handlers) Enroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := commonhandler.MemberID(r, actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Membership.BecomeMember(r.Context(), actor, memberID)
	if err != nil {
		h.writeMembershipError(w, r, "members.enroll", err, "member_id", memberID)
		return
	}

	status := http.StatusOK
	if result.Outcome == membershipdomain.EnrollCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, enrollResponse{
		Outcome: string(result.Outcome),
		Profile: toProfileResponse(result.Profile),
	})
}

func (h *Handlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req deactivateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
			return
		}
	}

	profile, err := h.Membership.Deactivate(r.Context(), actor, memberID, req.Reason)
	if err != nil {
		h.writeMembershipError(w, r, "members.deactivate", err, "member_id", memberID)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}

func (h *Handlers) AdminActivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req adminActivateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		writeError(w, http.StatusBadRequest, "payment_method_required", "payment_method is required")
		return
	}

	result, err := h.Membership.AdminActivate(r.Context(), actor, memberID, membershipdomain.AdminActivateInput{
		PaymentMethod: req.PaymentMethod,
		ReceiptRef:    req.ReceiptRef,
	})
	if err != nil {
		h.writeMembershipError(w, r, "members.admin_activate", err, "member_id", memberID)
		return
	}

	writeJSON(w, http.StatusOK, adminActivateResponse{
		Profile:            toProfileResponse(result.Profile),
		PaymentsRegistered: result.PaymentsRegistered,
		DebtCleared:        result.DebtCleared,
		SettledDues:        toDueResponses(result.SettledDues),
	})
}

func (h *Handlers) UpdateSportProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	var req sportProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.DisciplineID <= 0 || req.CategoryID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "discipline_id and category_id are required")
		return
	}

	profile, err := h.Membership.UpdateSportProfile(r.Context(), actor, membershipdomain.SportProfileInput{
		DisciplineID: req.DisciplineID,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		h.writeMembershipError(w, r, "members.sport_profile", err, "member_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}
