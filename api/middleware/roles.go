package middleware

import (
	"net/http"

	"github.com/voltline/voltline-backend/api/responses"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
)

// RequireAdmin admits admin and super_admin actors.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRoleCheck(logg, func(role enums.UserRole) bool {
		return role.IsAdmin()
	})
}

// RequireSuperAdmin admits only super_admin actors.
func RequireSuperAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRoleCheck(logg, func(role enums.UserRole) bool {
		return role == enums.UserRoleSuperAdmin
	})
}

func requireRoleCheck(logg *logger.Logger, allowed func(enums.UserRole) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.UserRole(RoleFromContext(r.Context()))
			if !role.IsValid() || !allowed(role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
