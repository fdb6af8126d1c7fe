package billing

import (
	"net/http"
	"strings"
	"time"

	billingdomain "club-app-go/internal/domain/billing"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

type levelResponse struct {
	ID          int64   `json:"id"`
	Level       int     `json:"level"`
	Discount    float64 `json:"discount"`
	Description string  `json:"description"`
}

type dueStatusResponse struct {
	ID              int64      `json:"id"`
	MemberID        int64      `json:"member_id"`
	CategoryID      *int64     `json:"category_id"`
	Period          string     `json:"period"`
	Amount          float64    `json:"amount"`
	DiscountApplied float64    `json:"discount_applied"`
	DueDate         string     `json:"due_date"`
	Paid            bool       `json:"paid"`
	PaidAt          *time.Time `json:"paid_at"`
	PaymentID       *int64     `json:"payment_id"`
	PaymentMethod   *string    `json:"payment_method"`
}

type generateRequest struct {
	Period string `json:"period"`
}

type backfillRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	MemberID *int64 `json:"member_id"`
}

type generationResponse struct {
	Period  string `json:"period"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

type backfillResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Months  int    `json:"months"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

func (h *Handlers) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Billing.ListLevels(r.Context())
	if err != nil {
		h.writeBillingError(w, r, "levels.list", err)
		return
	}
	response := make([]levelResponse, 0, len(levels))
	for _, level := range levels {
		response = append(response, levelResponse{
			ID:          level.ID,
			Level:       level.Level,
			Discount:    level.Discount,
			Description: level.Description,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListDues(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := commonhandler.MemberID(r, actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	query := r.URL.Query()

	dues, err := h.Billing.ListDues(r.Context(), actor, billingdomain.DueFilter{
		MemberID: memberID,
		State:    billingdomain.DueState(strings.TrimSpace(query.Get("state"))),
		Period:   strings.TrimSpace(query.Get("period")),
	})
	if err != nil {
		h.writeBillingError(w, r, "dues.list", err, "member_id", memberID)
		return
	}

	response := make([]dueStatusResponse, 0, len(dues))
	for _, due := range dues {
		response = append(response, dueStatusResponse{
			ID:              due.ID,
			MemberID:        due.MemberID,
			CategoryID:      due.CategoryID,
			Period:          due.Period,
			Amount:          due.Amount,
			DiscountApplied: due.DiscountApplied,
			DueDate:         due.DueDate.Format("2006-01-02"),
			Paid:            due.Paid,
			PaidAt:          due.PaidAt,
			PaymentID:       due.PaymentID,
			PaymentMethod:   due.PaymentMethod,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GenerateDues(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
			return
		}
	}

	if strings.TrimSpace(req.Period) == "" {
		req.Period = billingdomain.CurrentPeriod(time.Now())
	}

	report, err := h.Billing.GenerateMonthly(r.Context(), req.Period)
	if err != nil {
		h.writeBillingError(w, r, "dues.generate", err, "period", req.Period)
		return
	}
	h.log.Info("dues.generate: done", "period", report.Period, "created", report.Created, "skipped", report.Skipped)
	writeJSON(w, http.StatusCreated, generationResponse{
		Period:  report.Period,
		Created: report.Created,
		Skipped: report.Skipped,
	})
}

func (h *Handlers) BackfillDues(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.To) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "from and to are required")
		return
	}

	report, err := h.Billing.Backfill(r.Context(), billingdomain.BackfillInput{
		From:     req.From,
		To:       req.To,
		MemberID: req.MemberID,
	})
	if err != nil {
		h.writeBillingError(w, r, "dues.backfill", err, "from", req.From, "to", req.To)
		return
	}
	h.log.Info("dues.backfill: done", "from", report.From, "to", report.To, "created", report.Created, "skipped", report.Skipped)
	writeJSON(w, http.StatusCreated, backfillResponse{
		From:    report.From,
		To:      report.To,
		Months:  report.Months,
		Created: report.Created,
		Skipped: report.Skipped,
	})
}
