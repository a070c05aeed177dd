package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/internal/scheduler"
	"github.com/jdalisay/tourism-data-api/pkg/apiErrors"
	"github.com/jdalisay/tourism-data-api/pkg/middleware"
)

// Cron job types accepted by the manual run endpoint.
const (
	CronJobTypeMonthly  = "monthly-reminder"
	CronJobTypeDeadline = "deadline-reminder"
	CronJobTypeAll      = "all"
)

// CronJobServices bundles the scheduled jobs exposed to manual control.
type CronJobServices struct {
	MonthlyReminderService  *scheduler.MonthlyReminderService
	DeadlineReminderService *scheduler.DeadlineReminderService
}

// RunCronJob triggers one of the reminder jobs outside its schedule.
// Regional admins only.
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != domain.RoleRegionalAdmin {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Only regional administrators can run cron jobs", nil)
			return
		}

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Cron job type not specified", nil)
			return
		}

		switch cronType {
		case CronJobTypeMonthly:
			if services.MonthlyReminderService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Monthly reminder service not available", nil)
				return
			}
			services.MonthlyReminderService.TriggerManualRun()

		case CronJobTypeDeadline:
			if services.DeadlineReminderService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Deadline reminder service not available", nil)
				return
			}
			services.DeadlineReminderService.TriggerManualRun()

		case CronJobTypeAll:
			if services.MonthlyReminderService != nil {
				services.MonthlyReminderService.TriggerManualRun()
			}
			if services.DeadlineReminderService != nil {
				services.DeadlineReminderService.TriggerManualRun()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				"Invalid cron job type. Accepted values: monthly-reminder, deadline-reminder, all", nil)
			return
		}

		response := map[string]any{
			"message": "Cron job started",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus reports the state of every scheduled job.
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != domain.RoleRegionalAdmin {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Only regional administrators can view cron status", nil)
			return
		}

		status := map[string]any{
			"monthly-reminder":  services.MonthlyReminderService.GetStatus(),
			"deadline-reminder": services.DeadlineReminderService.GetStatus(),
		}

		json.NewEncoder(w).Encode(status)
	}
}
