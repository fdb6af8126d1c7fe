package access

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	accessdomain "club-app-go/internal/domain/access"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
	"club-app-go/internal/transport/httpserver/middleware"
)

const (
	maxCheckBody = 4 << 10
	maxRawInput  = 256
)

type checkRequest struct {
	ScannedCode json.RawMessage `json:"scanned_code"`
}

type memberInfoResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID *int64 `json:"category_id"`
}

type checkResponse struct {
	Granted    bool                `json:"granted"`
	Outcome    string              `json:"outcome"`
	Reason     string              `json:"reason"`
	Member     *memberInfoResponse `json:"member"`
	Message    string              `json:"message,omitempty"`
	UnpaidDues int                 `json:"unpaid_dues"`
}

type logResponse struct {
	ID        int64     `json:"id"`
	MemberID  *int64    `json:"member_id"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason"`
	RawInput  string    `json:"raw_input"`
	CreatedAt time.Time `json:"created_at"`
}

type listLogsResponse struct {
	Items []logResponse `json:"items"`
	Total int64         `json:"total"`
}

// Check always answers 200; the decision is carried in the body. Malformed
// and throttled scans are denied and logged like any other.
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code, err := scannedCode(r.Body)
	if err != nil {
		h.log.WithContext(ctx).BusinessError("access.check: malformed body", err)
	}

	var decision accessdomain.Decision
	if h.limiter != nil && !h.limiter.Allow(middleware.ClientKey(r)) {
		decision = h.Access.Throttled(ctx, code)
	} else {
		decision = h.Access.Evaluate(ctx, code)
	}
	response := checkResponse{
		Granted:    decision.Granted,
		Outcome:    string(decision.Outcome),
		Reason:     decision.Reason,
		Message:    decision.Message,
		UnpaidDues: decision.UnpaidDues,
	}
	if decision.Member != nil {
		response.Member = &memberInfoResponse{
			ID:         decision.Member.ID,
			Name:       decision.Member.Name,
			CategoryID: decision.Member.Category,
		}
	}
	commonhandler.WriteJSON(w, http.StatusOK, response)
}

// scannedCode extracts the code from a check body. A non-string code or a
// body that is not JSON is returned as raw text so it is still evaluated.
func scannedCode(body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxCheckBody))
	if err != nil {
		return "", err
	}
	var req checkRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return clip(string(data)), err
	}
	if len(req.ScannedCode) == 0 || string(req.ScannedCode) == "null" {
		return "", nil
	}
	var code string
	if err := json.Unmarshal(req.ScannedCode, &code); err != nil {
		return clip(string(req.ScannedCode)), err
	}
	return code, nil
}

// clip keeps raw input storable: valid UTF-8, no NUL bytes, bounded length.
func clip(value string) string {
	value = strings.ToValidUTF8(strings.ReplaceAll(value, "\x00", ""), "")
	if runes := []rune(value); len(runes) > maxRawInput {
		return string(runes[:maxRawInput])
	}
	return value
}

func (h *Handlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit, err := commonhandler.ParseIntParam(query.Get("limit"), 0)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := commonhandler.ParseIntParam(query.Get("offset"), 0)
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}
	memberID, err := commonhandler.ParseOptionalID(query.Get("member_id"))
	if err != nil {
		commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid member_id")
		return
	}

	logs, total, err := h.Access.ListLogs(r.Context(), actor, accessdomain.LogFilter{
		MemberID: memberID,
		Outcome:  accessdomain.Outcome(query.Get("outcome")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log := h.log.WithContext(r.Context())
		switch {
		case errors.Is(err, accessdomain.ErrForbidden):
			log.BusinessError("access.logs: forbidden", err)
			commonhandler.WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
		case errors.Is(err, accessdomain.ErrInvalidInput):
			log.BusinessError("access.logs: invalid input", err)
			commonhandler.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			log.InternalError("access.logs: failed", err)
			commonhandler.InternalError(w)
		}
		return
	}

	response := listLogsResponse{Items: make([]logResponse, 0, len(logs)), Total: total}
	for _, entry := range logs {
		response.Items = append(response.Items, logResponse{
			ID:        entry.ID,
			MemberID:  entry.MemberID,
			Outcome:   string(entry.Outcome),
			Reason:    entry.Reason,
			RawInput:  entry.RawInput,
			CreatedAt: entry.CreatedAt,
		})
	}
	commonhandler.WriteJSON(w, http.StatusOK, response)
}
