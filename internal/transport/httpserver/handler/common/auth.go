package common

import (
	"errors"
	"net/http"
	"strings"
	"time"

	identitydomain "club-app-go/internal/domain/identity"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone"`
	BirthDate      string `json:"birth_date"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type memberResponse struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DocumentNumber *string    `json:"document_number"`
	Phone          string     `json:"phone"`
	BirthDate      *string    `json:"birth_date"`
	ScanToken      string     `json:"scan_token"`
	Active         bool       `json:"active"`
	Roles          []string   `json:"roles,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Member    memberResponse `json:"member"`
}

type rolesResponse struct {
	MemberID int64    `json:"member_id"`
	Roles    []string `json:"roles"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	birthDate, err := ParseDateParam(req.BirthDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "birth_date must be YYYY-MM-DD")
		return
	}

	member, err := h.Identity.Register(r.Context(), identitydomain.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DocumentNumber: req.DocumentNumber,
		Phone:          req.Phone,
		BirthDate:      birthDate,
	})
	if err != nil {
		h.writeIdentityError(w, r, "auth.register", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(*member, nil))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := h.Identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeIdentityError(w, r, "auth.login", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Member:    toMemberResponse(result.Member, result.Roles),
	})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := RequireActor(w, r)
	if !ok {
		return
	}

	me, err := h.Identity.Me(r.Context(), actor.ID)
	if err != nil {
		h.writeIdentityError(w, r, "auth.me", err, "member_id", actor.ID)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(me.Member, me.Roles))
}

func (h *Handlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "role is required")
		return
	}

	roles, err := h.Identity.AssignRole(r.Context(), actor, memberID, req.Role)
	if err != nil {
		h.writeIdentityError(w, r, "roles.assign", err, "member_id", memberID, "role", req.Role)
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{MemberID: memberID, Roles: roles})
}

func (h *Handlers) RevokeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := RequireActor(w, r)
	if !ok {
		return
	}
	memberID, err := PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	role := chi.URLParam(r, "role")

	roles, err := h.Identity.RevokeRole(r.Context(), actor, memberID, role)
	if err != nil {
		h.writeIdentityError(w, r, "roles.revoke", err, "member_id", memberID, "role", role)
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{MemberID: memberID, Roles: roles})
}

func (h *Handlers) writeIdentityError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.log.WithContext(r.Context())
	switch {
	case errors.Is(err, identitydomain.ErrInvalidInput):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, identitydomain.ErrInvalidCredentials):
		log.BusinessError(op+": invalid credentials", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
	case errors.Is(err, identitydomain.ErrEmailTaken):
		log.BusinessError(op+": email taken", err, args...)
		writeError(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, identitydomain.ErrDocumentTaken):
		log.BusinessError(op+": document taken", err, args...)
		writeError(w, http.StatusConflict, "document_taken", "document number already registered")
	case errors.Is(err, identitydomain.ErrMemberConflict):
		log.BusinessError(op+": member conflict", err, args...)
		writeError(w, http.StatusConflict, "member_conflict", "email or document number already registered")
	case errors.Is(err, identitydomain.ErrForbidden):
		log.BusinessError(op+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, identitydomain.ErrMemberNotFound):
		log.BusinessError(op+": member not found", err, args...)
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
	case errors.Is(err, identitydomain.ErrRoleNotFound):
		log.BusinessError(op+": role not found", err, args...)
		writeError(w, http.StatusNotFound, "role_not_found", "role not found")
	default:
		log.InternalError(op+": failed", err, args...)
		InternalError(w)
	}
}

func toMemberResponse(member identitydomain.Member, roles []string) memberResponse {
	response := memberResponse{
		ID:             member.ID,
		Email:          member.Email,
		FirstName:      member.FirstName,
		LastName:       member.LastName,
		DocumentNumber: member.DocumentNumber,
		Phone:          member.Phone,
		ScanToken:      member.ScanToken,
		Active:         member.Active,
		Roles:          roles,
	}
	if member.BirthDate != nil {
		birthDate := member.BirthDate.Format(dateLayout)
		response.BirthDate = &birthDate
	}
	if !member.CreatedAt.IsZero() {
		createdAt := member.CreatedAt
		response.CreatedAt = &createdAt
	}
	return response
}
