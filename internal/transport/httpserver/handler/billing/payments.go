package billing

import (
	"net/http"
	"strings"

	billingdomain "club-app-go/internal/domain/billing"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

type registerPaymentsRequest struct {
	DueIDs        []int64 `json:"due_ids"`
	PaymentMethod string  `json:"payment_method"`
	ReceiptRef    string  `json:"receipt_ref"`
}

type registerPaymentsResponse struct {
	MemberID int64             `json:"member_id"`
	Payments []paymentResponse `json:"payments"`
	Total    float64           `json:"total"`
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *Handlers) RegisterPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req registerPaymentsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if len(req.DueIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "due_ids is required")
		return
	}

	payments, err := h.Billing.RegisterPayments(r.Context(), actor, memberID, billingdomain.RegisterPaymentsInput{
		DueIDs:     req.DueIDs,
		Method:     req.PaymentMethod,
		ReceiptRef: req.ReceiptRef,
	})
	if err != nil {
		h.writeBillingError(w, r, "payments.register", err, "member_id", memberID)
		return
	}

	response := registerPaymentsResponse{MemberID: memberID, Payments: make([]paymentResponse, 0, len(payments))}
	for _, payment := range payments {
		response.Payments = append(response.Payments, toPaymentResponse(payment))
		response.Total += payment.Amount
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	dueID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		writeError(w, http.StatusBadRequest, "payment_method_required", "payment_method is required")
		return
	}

	payment, err := h.Billing.Checkout(r.Context(), actor, dueID, req.PaymentMethod)
	if err != nil {
		h.writeBillingError(w, r, "dues.checkout", err, "due_id", dueID)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(*payment))
}

func (h *Handlers) Refund(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	paymentID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	payment, err := h.Billing.Refund(r.Context(), actor, paymentID)
	if err != nil {
		h.writeBillingError(w, r, "payments.refund", err, "payment_id", paymentID)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(*payment))
}
