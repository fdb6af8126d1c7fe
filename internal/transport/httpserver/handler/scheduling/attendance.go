package scheduling

import (
	"net/http"

	schedulingdomain "club-app-go/internal/domain/scheduling"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

type sheetEntryResponse struct {
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Note     string `json:"note"`
	Recorded bool   `json:"recorded"`
}

type attendanceSheetResponse struct {
	Session sessionResponse      `json:"session"`
	Entries []sheetEntryResponse `json:"entries"`
}

type attendanceEntryRequest struct {
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

type recordAttendanceRequest struct {
	Entries []attendanceEntryRequest `json:"entries"`
}

type recordAttendanceResponse struct {
	Recorded int `json:"recorded"`
}

func (h *Handlers) AttendanceSheet(w http.ResponseWriter, r *http.Request) {
	sessionID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sheet, err := h.Scheduling.AttendanceSheet(r.Context(), sessionID)
	if err != nil {
		h.writeSchedulingError(w, r, "attendance.sheet", err, "session_id", sessionID)
		return
	}

	response := attendanceSheetResponse{
		Session: toSessionResponse(sheet.Session),
		Entries: make([]sheetEntryResponse, 0, len(sheet.Entries)),
	}
	for _, entry := range sheet.Entries {
		response.Entries = append(response.Entries, sheetEntryResponse{
			MemberID: entry.MemberID,
			Name:     entry.Name,
			Status:   string(entry.Status),
			Note:     entry.Note,
			Recorded: entry.Recorded,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	sessionID, err := commonhandler.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req recordAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	entries := make([]schedulingdomain.AttendanceEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, schedulingdomain.AttendanceEntry{
			MemberID: entry.MemberID,
			Status:   schedulingdomain.AttendanceStatus(entry.Status),
			Note:     entry.Note,
		})
	}

	recorded, err := h.Scheduling.RecordAttendance(r.Context(), actor, sessionID, entries)
	if err != nil {
		h.writeSchedulingError(w, r, "attendance.record", err, "session_id", sessionID)
		return
	}
	writeJSON(w, http.StatusOK, recordAttendanceResponse{Recorded: recorded})
}
