package handler

import (
	"net/http"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/internal/usecases/reporting"
	"github.com/jdalisay/tourism-data-api/pkg/apiErrors"
	"github.com/jdalisay/tourism-data-api/pkg/log"
)

// regionalClaims widens a provincial admin's view to their whole region:
// the region assignment stays, the province and municipality levels are
// cleared so only the query string can narrow below the region.
func regionalClaims(claims *domain.Claims) *domain.Claims {
	widened := *claims
	widened.UserProvince = ""
	widened.UserMunicipality = ""
	return &widened
}

// GetRegionalMonthlyMetrics is the region-wide variant of GetMonthlyMetrics
// for provincial admins comparing their province against the region.
func GetRegionalMonthlyMetrics(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.MonthlyMetrics(regionalClaims(userClaims), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("regional-monthly-metrics: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load regional monthly metrics", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

func GetRegionalMonthlyCheckins(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.MonthlyCheckins(regionalClaims(userClaims), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("regional-monthly-checkins: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load regional monthly check-ins", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

func GetRegionalGuestDemographics(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.GuestDemographics(regionalClaims(userClaims), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("regional-guest-demographics: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load regional guest demographics", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

func GetRegionalNationalityCounts(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.NationalityCounts(regionalClaims(userClaims), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("regional-nationality-counts: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load regional nationality counts", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

func GetRegionalMunicipalities(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		municipalities, err := service.Municipalities(regionalClaims(userClaims), parseScope(r))
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("regional-municipalities: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load regional municipalities", nil)
			return
		}

		writeJSON(w, r, municipalities)
	})
}
