package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"BookStack/pkg/kit"
)

type ctxKey string

const userKey ctxKey = "user"

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// RequireUser rejects requests without a usable bearer token before the
// handler runs. An absent credential and a rejected one are distinct
// outcomes; both end up as 401 but with different messages.
func RequireUser(tm *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := tm.Parse(strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token",
					map[string]any{"reason": rejectReason(err)})
				return
			}

			ctx := context.WithValue(r.Context(), userKey, User{Name: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenBadSignature):
		return "bad signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "invalid"
	}
}
