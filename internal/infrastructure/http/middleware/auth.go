package middleware

import (
	"net/http"
	"strings"

	"github.com/avdeev/authgate/internal/application/ports"
)

// AuthValidator validates the bearer token and sets the user id in context
// (see UserIDFromContext). Missing, malformed, expired, and tampered tokens
// all produce the same 401 response.
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		userID, err := m.issuer.Validate(tokenString)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		ctx := WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
