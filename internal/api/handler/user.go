package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/internal/usecases/authenticating"
	"github.com/jdalisay/tourism-data-api/pkg/apiErrors"
)

// Register is the public self-registration endpoint. Whatever role or scope
// the payload claims, the account is created as an inactive establishment
// with no geographic assignment; regional admins grant both later through
// PUT /users/:id.
func Register(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user domain.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request format", nil)
			return
		}

		sanitizeRegistration(&user)
		createAccount(service, w, &user)
	}
}

// CreateUser creates an account with the role and scope given in the
// payload. Regional admins only.
func CreateUser(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user domain.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request format", nil)
			return
		}

		createAccount(service, w, &user)
	}
}

func sanitizeRegistration(u *domain.User) {
	u.RoleID = domain.RoleEstablishment
	u.Active = false
	u.Region = ""
	u.Province = ""
	u.Municipality = ""
}

func createAccount(service authenticating.Authenticator, w http.ResponseWriter, user *domain.User) {
	if user.Email == "" || user.PasswordHash == "" {
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Email and password are required", nil)
		return
	}

	created, err := service.CreateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, authenticating.ErrUserAlreadyExists):
			apiErrors.WriteError(w, apiErrors.ErrUserAlreadyExists, "An account with this email already exists", nil)
		case errors.Is(err, authenticating.ErrWeakPassword):
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat,
				"Password must have at least 8 characters including upper case, lower case and digits", nil)
		default:
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Failed to create user", nil)
		}
		return
	}

	created.PasswordHash = ""

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// ListUsers returns every registered account. Regional admins only.
func ListUsers(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := service.ListUsers()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Failed to list users", nil)
			return
		}

		for _, u := range users {
			u.PasswordHash = ""
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(users)
	}
}

// GetUser returns one account by id.
func GetUser(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid user id", nil)
			return
		}

		user, err := service.GetUserProfile(userID)
		if err != nil {
			if errors.Is(err, authenticating.ErrUserNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrUserNotFound, "User not found", nil)
				return
			}
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Failed to load user", nil)
			return
		}

		user.PasswordHash = ""

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	}
}

// UpdateUser applies a partial update to an account: activation, role and
// scope assignment, establishment details. Regional admins only.
func UpdateUser(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid user id", nil)
			return
		}

		var req domain.UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request format", nil)
			return
		}
		req.ID = userID

		if err := service.UpdateUser(&req); err != nil {
			if errors.Is(err, authenticating.ErrUserNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrUserNotFound, "User not found", nil)
				return
			}
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Failed to update user", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "User updated successfully",
		})
	}
}
