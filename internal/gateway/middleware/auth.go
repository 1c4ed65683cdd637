package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/saransh1220/premium-profile/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/premium-profile/internal/shared/utils"
)

type contextKey string

const (
	ContextKeyUserId contextKey = "user_id"
	ContextKeyRole   contextKey = "role"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.CustomClaims, error)
}

type AuthMiddleWare struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates the middleware around the token validator shared
// with the account service. Identity itself is owned by that service; this
// layer only resolves the caller's user id.
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleWare {
	return &AuthMiddleWare{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token and injects the
// caller's user id and role into the request context. Websocket upgrades may
// pass the token as ?token= instead, since browsers cannot set headers there.
// Other requests must use the header so tokens stay out of access logs.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" && websocket.IsWebSocketUpgrade(r) {
			tokenStr = r.URL.Query().Get("token")
		}

		if tokenStr == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization", nil)
			return
		}

		claims, err := m.tokens.ValidateToken(tokenStr)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserId, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated caller, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserId).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
