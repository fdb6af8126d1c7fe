package members

import (
	"net/http"
	"time"

	membershipdomain "club-app-go/internal/domain/membership"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
)

type memberSummaryResponse struct {
	MemberID       int64      `json:"member_id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DocumentNumber *string    `json:"document_number"`
	State          string     `json:"state"`
	Level          *int       `json:"level"`
	DisciplineID   *int64     `json:"discipline_id"`
	Discipline     *string    `json:"discipline"`
	CategoryID     *int64     `json:"category_id"`
	Category       *string    `json:"category"`
	DeactivatedAt  *time.Time `json:"deactivated_at"`
	DuesUpToDate   bool       `json:"dues_up_to_date"`
}

type listMembersResponse struct {
	Items  []memberSummaryResponse `json:"items"`
	Total  int64                   `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

type disciplineResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type categoryResponse struct {
	ID           int64  `json:"id"`
	DisciplineID int64  `json:"discipline_id"`
	Name         string `json:"name"`
	MinAge       *int   `json:"min_age"`
	MaxAge       *int   `json:"max_age"`
	Sex          string `json:"sex"`
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := commonhandler.RequireActor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	limit, err := commonhandler.ParseIntParam(query.Get("limit"), 50)
	if err != nil || limit <= 0 || limit > 200 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 200")
		return
	}
	offset, err := commonhandler.ParseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}
	categoryID, err := commonhandler.ParseOptionalID(query.Get("category_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid category_id")
		return
	}

	filter := membershipdomain.MemberFilter{
		State:      membershipdomain.State(query.Get("state")),
		CategoryID: categoryID,
		Query:      query.Get("q"),
		Limit:      limit,
		Offset:     offset,
	}
	items, total, err := h.Membership.ListMembers(r.Context(), actor, filter)
	if err != nil {
		h.writeMembershipError(w, r, "members.list", err)
		return
	}

	response := listMembersResponse{
		Items:  make([]memberSummaryResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, item := range items {
		response.Items = append(response.Items, memberSummaryResponse{
			MemberID:       item.MemberID,
			Email:          item.Email,
			FirstName:      item.FirstName,
			LastName:       item.LastName,
			DocumentNumber: item.DocumentNumber,
			State:          string(item.State),
			Level:          item.Level,
			DisciplineID:   item.DisciplineID,
			Discipline:     item.Discipline,
			CategoryID:     item.CategoryID,
			Category:       item.Category,
			DeactivatedAt:  item.DeactivatedAt,
			DuesUpToDate:   item.DuesUpToDate,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListDisciplines(w http.ResponseWriter, r *http.Request) {
	disciplines, err := h.Membership.ListDisciplines(r.Context())
	if err != nil {
		h.writeMembershipError(w, r, "disciplines.list", err)
		return
	}
	response := make([]disciplineResponse, 0, len(disciplines))
	for _, discipline := range disciplines {
		response = append(response, disciplineResponse{ID: discipline.ID, Name: discipline.Name})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	disciplineID, err := commonhandler.ParseOptionalID(r.URL.Query().Get("discipline_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid discipline_id")
		return
	}
	categories, err := h.Membership.ListCategories(r.Context(), disciplineID)
	if err != nil {
		h.writeMembershipError(w, r, "categories.list", err)
		return
	}
	response := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, categoryResponse{
			ID:           category.ID,
			DisciplineID: category.DisciplineID,
			Name:         category.Name,
			MinAge:       category.MinAge,
			MaxAge:       category.MaxAge,
			Sex:          category.Sex,
		})
	}
	writeJSON(w, http.StatusOK, response)
}
