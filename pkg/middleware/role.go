package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/pkg/apiErrors"
)

// RoleMiddleware restricts a route to the given role IDs.
func RoleMiddleware(allowedRoles []int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims)
			if !ok {
				logrus.Warning("access attempt without authentication")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "User is not authenticated", nil)
				return
			}

			isAllowed := false
			for _, role := range allowedRoles {
				if userClaims.UserRoleID == role {
					isAllowed = true
					break
				}
			}

			if !isAllowed {
				logrus.Warningf("access denied for user ID=%d, role=%d", userClaims.UserID, userClaims.UserRoleID)
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "You do not have permission to access this resource", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RegionalOnly allows only regional administrators.
func RegionalOnly() func(http.Handler) http.Handler {
	return RoleMiddleware([]int{domain.RoleRegionalAdmin})
}

// ProvincialOnly allows provincial administrators (and regional ones, who
// outrank them).
func ProvincialOnly() func(http.Handler) http.Handler {
	return RoleMiddleware([]int{domain.RoleRegionalAdmin, domain.RoleProvincialAdmin})
}

// AnyAdmin allows all three administrator tiers.
func AnyAdmin() func(http.Handler) http.Handler {
	return RoleMiddleware([]int{domain.RoleRegionalAdmin, domain.RoleProvincialAdmin, domain.RoleMunicipalAdmin})
}

// EstablishmentOnly allows establishment users, the ones who file reports.
func EstablishmentOnly() func(http.Handler) http.Handler {
	return RoleMiddleware([]int{domain.RoleEstablishment})
}

// AllRoles allows every authenticated user.
func AllRoles() func(http.Handler) http.Handler {
	return RoleMiddleware([]int{
		domain.RoleRegionalAdmin,
		domain.RoleProvincialAdmin,
		domain.RoleMunicipalAdmin,
		domain.RoleEstablishment,
	})
}
