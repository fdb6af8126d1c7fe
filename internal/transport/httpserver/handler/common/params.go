package common

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"club-app-go/internal/domain/identity"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// MemberID parses a member id URL parameter; "me" resolves to the caller.
func MemberID(r *http.Request, actor identity.Actor) (int64, error) {
	if strings.TrimSpace(chi.URLParam(r, "id")) == "me" {
		return actor.ID, nil
	}
	return PathID(r, "id")
}

func ParseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse(dateLayout, value)
}

func ParseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func ParseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

func ParseOptionalID(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid id")
	}
	return &id, nil
}
