package httpx

import (
	"context"
	"net/http"
)

type ctxKey int

const principalKey ctxKey = 0

// HeaderUserID carries the authenticated principal id. The identity service
// in front of this API terminates the session and relays the stable user id
// here; requests without it are rejected.
const HeaderUserID = "X-User-Id"

func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get(HeaderUserID)
		if uid == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing principal"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, uid)))
	})
}

// Principal returns the authenticated user id set by RequirePrincipal.
func Principal(ctx context.Context) string {
	uid, _ := ctx.Value(principalKey).(string)
	return uid
}
