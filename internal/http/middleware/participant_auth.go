package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const participantKey contextKey = "participant"

// ParticipantClaims carries the authenticated consultation participant.
type ParticipantClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParticipantJWT enforces an HMAC-signed JWT whose subject is the user id
// and whose role claim is "patient" or "practitioner".
func ParticipantJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := ParticipantClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.Subject == "" || (claims.Role != "patient" && claims.Role != "practitioner") {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), participantKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParticipantFromContext returns the authenticated participant claims.
func ParticipantFromContext(ctx context.Context) (ParticipantClaims, bool) {
	claims, ok := ctx.Value(participantKey).(ParticipantClaims)
	return claims, ok
}
