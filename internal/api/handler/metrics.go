package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/internal/usecases/reporting"
	"github.com/jdalisay/tourism-data-api/pkg/apiErrors"
	"github.com/jdalisay/tourism-data-api/pkg/log"
	"github.com/jdalisay/tourism-data-api/pkg/middleware"
)

// parseMetricFilters reads the common query parameters of every metrics
// endpoint: year (required), month (optional, 1-12) and the scope levels.
func parseMetricFilters(r *http.Request) (domain.MetricFilters, *apiErrorSpec) {
	query := r.URL.Query()

	yearStr := query.Get("year")
	if yearStr == "" {
		return domain.MetricFilters{}, &apiErrorSpec{apiErrors.ErrMissingRequiredData, "The year parameter is required"}
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return domain.MetricFilters{}, &apiErrorSpec{apiErrors.ErrInvalidFormat, "Invalid year. Use a four digit year, e.g. 2025"}
	}

	filters := domain.MetricFilters{
		Year:  year,
		Scope: parseScope(r),
	}

	if monthStr := query.Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			return domain.MetricFilters{}, &apiErrorSpec{apiErrors.ErrInvalidFormat, "Invalid month. Use a value between 1 and 12"}
		}
		filters.Month = &month
	}

	return filters, nil
}

func parseScope(r *http.Request) domain.ScopeFilter {
	query := r.URL.Query()
	return domain.ScopeFilter{
		Region:       query.Get("region"),
		Province:     query.Get("province"),
		Municipality: query.Get("municipality"),
	}
}

type apiErrorSpec struct {
	code    string
	message string
}

func claimsFromRequest(w http.ResponseWriter, r *http.Request) (*domain.Claims, bool) {
	userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Not authenticated", nil)
		return nil, false
	}
	return userClaims, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("metrics: failed to encode response")
	}
}

// GetMonthlyMetrics returns the sparse per-month aggregate rows for the
// requested year and scope.
func GetMonthlyMetrics(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.MonthlyMetrics(userClaims, filters)
		if err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"year": filters.Year,
			}).Error("monthly-metrics: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load monthly metrics", nil)
			return
		}

		logger.WithFields(log.Fields{
			"year":          filters.Year,
			"rows_returned": len(rows),
		}).Info("monthly-metrics: report generated")

		writeJSON(w, r, rows)
	})
}

// GetMonthlyCheckins returns the per-month check-in, overnight and occupied
// room totals used by the dashboard chart.
func GetMonthlyCheckins(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.MonthlyCheckins(userClaims, filters)
		if err != nil {
			logger.WithError(err).Error("monthly-checkins: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load monthly check-ins", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

// GetGuestDemographics returns the per-month male/female/minor/foreign guest
// breakdown.
func GetGuestDemographics(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.GuestDemographics(userClaims, filters)
		if err != nil {
			logger.WithError(err).Error("guest-demographics: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load guest demographics", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

// GetNationalityCounts returns guest counts per nationality, ordered by
// count descending.
func GetNationalityCounts(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		rows, err := service.NationalityCounts(userClaims, filters)
		if err != nil {
			logger.WithError(err).Error("nationality-counts: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load nationality counts", nil)
			return
		}

		writeJSON(w, r, rows)
	})
}

// GetMunicipalities lists the municipalities with registered establishments
// inside the requested scope.
func GetMunicipalities(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		municipalities, err := service.Municipalities(userClaims, parseScope(r))
		if err != nil {
			logger.WithError(err).Error("municipalities: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to load municipalities", nil)
			return
		}

		writeJSON(w, r, municipalities)
	})
}

// GetAnnualReport returns the dense year-end report: every series padded to
// twelve ordered months so the export layer never has to fill gaps itself.
func GetAnnualReport(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		filters, errSpec := parseMetricFilters(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		report, err := service.AnnualReport(userClaims, filters.Year, filters.Scope)
		if err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"year": filters.Year,
			}).Error("annual-report: query failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to build annual report", nil)
			return
		}

		logger.WithFields(log.Fields{
			"year": filters.Year,
		}).Info("annual-report: report generated")

		writeJSON(w, r, report)
	})
}
