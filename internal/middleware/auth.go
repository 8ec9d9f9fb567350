package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gams-bknd/internal/auth"
	"gams-bknd/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenVersionChecker validates that a token's version still matches
// the user record, so revoked sessions die even before expiry. The
// auth service implements it; tests use a fake.
type TokenVersionChecker interface {
	CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error)
}

type AuthMiddleware struct {
	jwtMgr  *auth.JWTManager
	checker TokenVersionChecker
	logr    *zap.Logger
}

type contextKey string

const (
	ContextUserIDKey  contextKey = "userID"
	ContextRolesKey   contextKey = "roles"
	ContextAuthMethod contextKey = "authMethod"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadFormat     = errors.New("invalid token format")
	errRevoked       = errors.New("token revoked or invalid")
)

func NewAuthMiddleware(jwtMgr *auth.JWTManager, checker TokenVersionChecker, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwtMgr: jwtMgr, checker: checker, logr: logr}
}

// JWTAuth validates the bearer token and attaches user info to the
// request context. Used by the auth routes themselves.
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.resolveSession(r)
		if err != nil {
			m.logr.Warn("session rejected", zap.Error(err))
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
	})
}

// RequireAdmin gates every registry operation. Any failure to produce
// a valid administrative session (missing token, bad signature,
// revoked version, non-admin role) yields the same rejection before
// any store access.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.resolveSession(r)
		if err != nil {
			m.logr.Warn("admin gate rejected session", zap.Error(err))
			unauthorized(w)
			return
		}
		if !hasRole(claims, models.RoleAdmin) {
			m.logr.Warn("admin gate rejected non-admin", zap.String("user_id", claims.userID))
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
	})
}

type sessionClaims struct {
	userID     string
	authMethod string
	roles      []string
}

func (m *AuthMiddleware) resolveSession(r *http.Request) (*sessionClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errBadFormat
	}

	claims, err := m.jwtMgr.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, _ := claims["sub"].(string)
	authMethod, _ := claims["auth_method"].(string)
	tokenVersionFloat, _ := claims["ver"].(float64)

	valid, err := m.checker.CheckTokenVersion(r.Context(), userID, int(tokenVersionFloat))
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, errRevoked
	}

	return &sessionClaims{
		userID:     userID,
		authMethod: authMethod,
		roles:      rolesFromClaims(claims),
	}, nil
}

func rolesFromClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

func hasRole(claims *sessionClaims, role string) bool {
	for _, r := range claims.roles {
		if r == role {
			return true
		}
	}
	return false
}

func contextWithClaims(ctx context.Context, claims *sessionClaims) context.Context {
	ctx = context.WithValue(ctx, ContextUserIDKey, claims.userID)
	ctx = context.WithValue(ctx, ContextRolesKey, claims.roles)
	return context.WithValue(ctx, ContextAuthMethod, claims.authMethod)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
