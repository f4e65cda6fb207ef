package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jcmexdev/course-marketplace/internal/pkg/reqctx"
)

// Claims is the token payload issued by the auth service.
type Claims struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccountType string `json:"accountType"`
	jwt.RegisteredClaims
}

// Authenticate rejects requests without a valid HS256 bearer token and
// stores the caller in reqctx.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "Token is missing")
				return
			}

			var claims Claims
			token, err := parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !token.Valid || claims.ID == "" {
				msg := "Token is invalid"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "Token has expired"
				}
				deny(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := reqctx.WithPrincipal(r.Context(), reqctx.Principal{
				UserID:      claims.ID,
				Email:       claims.Email,
				AccountType: reqctx.AccountType(claims.AccountType),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must be mounted after Authenticate.
func RequireRole(roles ...reqctx.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := reqctx.PrincipalFrom(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Token is missing")
				return
			}
			if !slices.Contains(roles, p.AccountType) {
				deny(w, http.StatusForbidden, "This is a protected route for "+roleNames(roles))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueToken signs claims the way Authenticate expects them. Used by tests
// and local tooling.
func IssueToken(secret []byte, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(h, "Bearer ")
	raw = strings.TrimSpace(raw)
	return raw, found && raw != ""
}

func roleNames(roles []reqctx.AccountType) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
