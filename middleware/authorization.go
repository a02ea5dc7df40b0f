package middleware

import (
	"net/http"

	"devlink.vn/backoffice/utils"
)

// RequirePermission checks the authenticated user's role against the
// role-permission table before the handler runs. The lifecycle transition
// endpoints differ only in which permission they demand here; the engine
// behind them is shared.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !utils.RoleHasPermission(claims.Role, permission) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
