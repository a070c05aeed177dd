package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/internal/usecases/submitting"
	"github.com/jdalisay/tourism-data-api/pkg/apiErrors"
	"github.com/jdalisay/tourism-data-api/pkg/log"
)

// CreateSubmission files the authenticated establishment's monthly report.
func CreateSubmission(service submitting.Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		var submission domain.Submission
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request format", nil)
			return
		}

		created, err := service.CreateSubmission(userClaims.UserID, &submission)
		if err != nil {
			handleSubmissionError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"user_id":      userClaims.UserID,
			"year":         created.Year,
			"month":        created.Month,
			"reference_no": created.ReferenceNo,
		}).Info("submissions: report filed")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	})
}

// ListSubmissions returns the authenticated establishment's own reports.
func ListSubmissions(service submitting.Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		submissions, err := service.ListSubmissions(userClaims.UserID)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("submissions: list failed")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Failed to list submissions", nil)
			return
		}

		writeJSON(w, r, submissions)
	})
}

// GetSubmission returns one of the establishment's own reports with its
// daily metrics and guest rows.
func GetSubmission(service submitting.Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		submissionID, err := strconv.Atoi(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid submission id", nil)
			return
		}

		submission, err := service.GetSubmission(userClaims.UserID, submissionID)
		if err != nil {
			handleSubmissionError(w, err)
			return
		}

		writeJSON(w, r, submission)
	})
}

// SaveDraft stores a work-in-progress report payload for later.
func SaveDraft(service submitting.Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		var draft domain.DraftSubmission
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request format", nil)
			return
		}

		if err := service.SaveDraft(userClaims.UserID, &draft); err != nil {
			handleSubmissionError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Draft saved",
		})
	})
}

// GetDraft loads the stored draft for a period, if any.
func GetDraft(service submitting.Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		year, month, errSpec := draftPeriodFromURL(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		draft, err := service.GetDraft(userClaims.UserID, year, month)
		if err != nil {
			handleSubmissionError(w, err)
			return
		}

		if draft == nil {
			apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "No draft for this period", nil)
			return
		}

		writeJSON(w, r, draft)
	})
}

// DeleteDraft discards the stored draft for a period.
func DeleteDraft(service submitting.Submitter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		year, month, errSpec := draftPeriodFromURL(r)
		if errSpec != nil {
			apiErrors.WriteError(w, errSpec.code, errSpec.message, nil)
			return
		}

		if err := service.DeleteDraft(userClaims.UserID, year, month); err != nil {
			handleSubmissionError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Draft deleted",
		})
	})
}

func draftPeriodFromURL(r *http.Request) (int, int, *apiErrorSpec) {
	params := httprouter.ParamsFromContext(r.Context())

	year, err := strconv.Atoi(params.ByName("year"))
	if err != nil {
		return 0, 0, &apiErrorSpec{apiErrors.ErrInvalidFormat, "Invalid year"}
	}

	month, err := strconv.Atoi(params.ByName("month"))
	if err != nil {
		return 0, 0, &apiErrorSpec{apiErrors.ErrInvalidFormat, "Invalid month"}
	}

	return year, month, nil
}

func handleSubmissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, submitting.ErrInvalidPeriod):
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid reporting period", nil)

	case errors.Is(err, submitting.ErrDuplicateSubmission):
		apiErrors.WriteError(w, apiErrors.ErrDuplicateSubmission, "A report for this period has already been filed", nil)

	case errors.Is(err, submitting.ErrNotFound):
		apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Submission not found", nil)

	case errors.Is(err, submitting.ErrNotOwner):
		apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "This submission belongs to another establishment", nil)

	default:
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Submission operation failed", nil)
	}
}
