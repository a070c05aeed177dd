package handler

import (
	"net/http"

	"github.com/jdalisay/tourism-data-api/internal/api/handler/router"
	"github.com/jdalisay/tourism-data-api/internal/usecases/authenticating"
	"github.com/jdalisay/tourism-data-api/internal/usecases/reporting"
	"github.com/jdalisay/tourism-data-api/internal/usecases/submitting"
	"github.com/jdalisay/tourism-data-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/register",
			Method:  http.MethodPost,
			Handler: Register(service),
		},
		{
			Path:        "/users/:id/generate-password",
			Method:      http.MethodPost,
			Handler:     GeneratePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RegionalOnly()},
		},
		{
			Path:        "/users/:id/change-password",
			Method:      http.MethodPost,
			Handler:     ChangePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func User(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RegionalOnly()},
		},
		{
			Path:        "/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RegionalOnly()},
		},
		{
			Path:        "/users/:id",
			Method:      http.MethodGet,
			Handler:     GetUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RegionalOnly()},
		},
		{
			Path:        "/users/:id",
			Method:      http.MethodPut,
			Handler:     UpdateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RegionalOnly()},
		},
	}
}

// AdminMetrics is the dashboard read surface shared by the three admin
// tiers. The reporting service clamps every query to the caller's own scope.
func AdminMetrics(service reporting.Reporter) []router.Route {
	adminOnly := []func(http.Handler) http.Handler{middleware.AnyAdmin()}

	return []router.Route{
		{
			Path:        "/admin/monthly-checkins",
			Method:      http.MethodGet,
			Handler:     GetMonthlyCheckins(service),
			Middlewares: adminOnly,
		},
		{
			Path:        "/admin/monthly-metrics",
			Method:      http.MethodGet,
			Handler:     GetMonthlyMetrics(service),
			Middlewares: adminOnly,
		},
		{
			Path:        "/admin/guest-demographics",
			Method:      http.MethodGet,
			Handler:     GetGuestDemographics(service),
			Middlewares: adminOnly,
		},
		{
			Path:        "/admin/nationality-counts",
			Method:      http.MethodGet,
			Handler:     GetNationalityCounts(service),
			Middlewares: adminOnly,
		},
		{
			Path:        "/admin/municipalities",
			Method:      http.MethodGet,
			Handler:     GetMunicipalities(service),
			Middlewares: adminOnly,
		},
		{
			Path:        "/admin/annual-report",
			Method:      http.MethodGet,
			Handler:     GetAnnualReport(service),
			Middlewares: adminOnly,
		},
	}
}

// ProvincialMetrics gives provincial admins a region-wide view for
// comparison against their own province.
func ProvincialMetrics(service reporting.Reporter) []router.Route {
	provincial := []func(http.Handler) http.Handler{middleware.ProvincialOnly()}

	return []router.Route{
		{
			Path:        "/provincial-admin/regional/monthly-checkins",
			Method:      http.MethodGet,
			Handler:     GetRegionalMonthlyCheckins(service),
			Middlewares: provincial,
		},
		{
			Path:        "/provincial-admin/regional/monthly-metrics",
			Method:      http.MethodGet,
			Handler:     GetRegionalMonthlyMetrics(service),
			Middlewares: provincial,
		},
		{
			Path:        "/provincial-admin/regional/guest-demographics",
			Method:      http.MethodGet,
			Handler:     GetRegionalGuestDemographics(service),
			Middlewares: provincial,
		},
		{
			Path:        "/provincial-admin/regional/nationality-counts",
			Method:      http.MethodGet,
			Handler:     GetRegionalNationalityCounts(service),
			Middlewares: provincial,
		},
		{
			Path:        "/provincial-admin/regional/municipalities",
			Method:      http.MethodGet,
			Handler:     GetRegionalMunicipalities(service),
			Middlewares: provincial,
		},
	}
}

func Submissions(service submitting.Submitter) []router.Route {
	establishment := []func(http.Handler) http.Handler{middleware.EstablishmentOnly()}

	return []router.Route{
		{
			Path:        "/submissions",
			Method:      http.MethodPost,
			Handler:     CreateSubmission(service),
			Middlewares: establishment,
		},
		{
			Path:        "/submissions",
			Method:      http.MethodGet,
			Handler:     ListSubmissions(service),
			Middlewares: establishment,
		},
		{
			Path:        "/submissions/:id",
			Method:      http.MethodGet,
			Handler:     GetSubmission(service),
			Middlewares: establishment,
		},
		{
			Path:        "/drafts",
			Method:      http.MethodPut,
			Handler:     SaveDraft(service),
			Middlewares: establishment,
		},
		{
			Path:        "/drafts/:year/:month",
			Method:      http.MethodGet,
			Handler:     GetDraft(service),
			Middlewares: establishment,
		},
		{
			Path:        "/drafts/:year/:month",
			Method:      http.MethodDelete,
			Handler:     DeleteDraft(service),
			Middlewares: establishment,
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	regionalOnly := []func(http.Handler) http.Handler{middleware.RegionalOnly()}

	return []router.Route{
		{
			Path:        "/admin/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: regionalOnly,
		},
		{
			Path:        "/admin/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: regionalOnly,
		},
	}
}
