package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"club-app-go/internal/auth"
	"club-app-go/internal/domain/identity"
	"club-app-go/pkg/logger"
)

type contextKey int

const (
	actorKey contextKey = iota
	emailKey
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// JWTAuth resolves the bearer token into an identity.Actor on the request
// context.
type JWTAuth struct {
	tokens TokenParser
	log    logger.Logger
}

func NewJWTAuth(tokens TokenParser, log logger.Logger) *JWTAuth {
	return &JWTAuth{tokens: tokens, log: log}
}

// Required rejects requests without a valid token.
func (a *JWTAuth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.claims(r)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// Optional attaches the actor when a valid token is present and otherwise
// lets the request through as anonymous.
func (a *JWTAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := a.claims(r); ok {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *JWTAuth) claims(r *http.Request) (*auth.Claims, bool) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		a.log.Debug("auth: token rejected", "err", err, "path", r.URL.Path)
		return nil, false
	}
	return claims, true
}

// RequireAnyRole lets the request through only when the actor holds at least
// one of roles.
func RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if !identity.HasAnyRole(actor.Roles, roles...) {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = logger.ContextWith(ctx, "actor_id", claims.ID)
	ctx = WithActor(ctx, identity.Actor{ID: claims.ID, Roles: claims.Roles})
	return context.WithValue(ctx, emailKey, claims.Email)
}

func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (identity.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(identity.Actor)
	if !ok || actor.ID == 0 {
		return identity.Actor{}, false
	}
	return actor, true
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
