package middleware

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

type contextKey string

const UIDKey contextKey = "uid"

// DemoUser attaches the single demo user to every request. There is no
// authentication; the uid only scopes logging.
func DemoUser(uid string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), UIDKey, uid)
			_, ctx = logger.With(ctx, "uid", uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UID returns the user id set by DemoUser.
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}
