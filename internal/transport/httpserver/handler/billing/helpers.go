package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	billingdomain "club-app-go/internal/domain/billing"
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

type paymentResponse struct {
	ID                int64           `json:"id"`
	DueID             int64           `json:"due_id"`
	Amount            float64         `json:"amount"`
	Currency          string          `json:"currency"`
	Method            string          `json:"method"`
	State             string          `json:"state"`
	ExternalReference *string         `json:"external_reference"`
	ReceiptRef        *string         `json:"receipt_ref"`
	Detail            json.RawMessage `json:"detail,omitempty"`
	PaidAt            *time.Time      `json:"paid_at"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toPaymentResponse(payment billingdomain.Payment) paymentResponse {
	response := paymentResponse{
		ID:                payment.ID,
		DueID:             payment.DueID,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		Method:            payment.Method,
		State:             string(payment.State),
		ExternalReference: payment.ExternalReference,
		ReceiptRef:        payment.ReceiptRef,
		PaidAt:            payment.PaidAt,
		CreatedAt:         payment.CreatedAt,
	}
	if len(payment.Detail) > 0 {
		response.Detail = json.RawMessage(payment.Detail)
	}
	return response
}

func (h *Handlers) writeBillingError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.log.WithContext(r.Context())
	switch {
	case errors.Is(err, billingdomain.ErrForbidden):
		log.BusinessError(op+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, billingdomain.ErrInvalidInput), errors.Is(err, billingdomain.ErrInvalidPeriod):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, billingdomain.ErrDueNotFound):
		log.BusinessError(op+": due not found", err, args...)
		writeError(w, http.StatusNotFound, "due_not_found", "due not found")
	case errors.Is(err, billingdomain.ErrPaymentNotFound):
		log.BusinessError(op+": payment not found", err, args...)
		writeError(w, http.StatusNotFound, "payment_not_found", "payment not found")
	case errors.Is(err, billingdomain.ErrNothingToPay):
		log.BusinessError(op+": nothing to pay", err, args...)
		writeError(w, http.StatusBadRequest, "nothing_to_pay", "no unpaid dues selected")
	case errors.Is(err, billingdomain.ErrDueAlreadyPaid):
		log.BusinessError(op+": due already paid", err, args...)
		writeError(w, http.StatusConflict, "due_already_paid", "due already paid")
	case errors.Is(err, billingdomain.ErrPaymentNotRefundable):
		log.BusinessError(op+": payment not refundable", err, args...)
		writeError(w, http.StatusBadRequest, "payment_not_refundable", "only completed payments can be refunded")
	case errors.Is(err, billingdomain.ErrPaymentMethodMissing):
		log.BusinessError(op+": payment method missing", err, args...)
		writeError(w, http.StatusBadRequest, "payment_method_required", "payment_method is required")
	case errors.Is(err, billingdomain.ErrMemberNotEligible):
		log.BusinessError(op+": member not eligible", err, args...)
		writeError(w, http.StatusBadRequest, "member_not_eligible", "member is not an active member")
	case errors.Is(err, billingdomain.ErrLevelNotFound):
		log.InternalError(op+": configuration error", err, args...)
		writeError(w, http.StatusInternalServerError, "configuration_error", err.Error())
	default:
		log.InternalError(op+": failed", err, args...)
		commonhandler.InternalError(w)
	}
}
