package identity

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Middleware validates the Authorization bearer token (HS256) and injects
// the resolved Actor into the request context. The token subject is the
// user id; the "roles" claim carries the role list.
func Middleware(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				unauthorized(w, logger, "missing token")
				return
			}

			parts := strings.SplitN(raw, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, logger, "invalid token")
				return
			}

			actor, err := ParseToken(parts[1], secret)
			if err != nil {
				logger.Warn("token validation failed", "error", err)
				unauthorized(w, logger, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// ParseToken verifies an HS256 token and extracts the Actor.
func ParseToken(tokenString, secret string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Actor{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Actor{}, jwt.ErrTokenInvalidSubject
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return Actor{}, jwt.ErrTokenInvalidSubject
	}

	actor := Actor{UserID: userID}
	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, r := range rawRoles {
			if s, ok := r.(string); ok {
				actor.Roles = append(actor.Roles, Role(s))
			}
		}
	}

	return actor, nil
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
