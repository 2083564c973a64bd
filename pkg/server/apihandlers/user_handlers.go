package apihandlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/userhub/userhub/internal"
	"github.com/userhub/userhub/pkg/models"
	"github.com/userhub/userhub/pkg/server/handlertools"
	"github.com/userhub/userhub/pkg/validate"
)

var log = internal.GetLogger()

const (
	// DefaultPageSize is used when the limit query param is omitted.
	DefaultPageSize = 100
	// MaxPageSize bounds the limit query param.
	MaxPageSize = 1000
)

// logRequest emits the per-request structured record. Fire and forget: the
// outcome of the request never depends on it.
func logRequest(operation, userID string, start time.Time, errorKind string) {
	outcome := "ok"
	if errorKind != "" {
		outcome = "error"
	}
	fields := logrus.Fields{
		"operation": operation,
		"outcome":   outcome,
		"latency":   time.Since(start).String(),
	}
	if userID != "" {
		fields["user_id"] = userID
	}
	if errorKind != "" {
		fields["error_kind"] = errorKind
	}
	log.WithFields(fields).Info("user request")
}

func respondError(
	w http.ResponseWriter,
	operation, userID string,
	start time.Time,
	err error,
) {
	_, kind := renderError(w, err)
	logRequest(operation, userID, start, kind)
}

// CreateUserHandler handles POST /api/v1/users. The server generates the
// user id and timestamps; a caller-supplied user_id field is rejected by the
// closed-schema body decoding.
func CreateUserHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var user models.CreateUserRequest
		if err := handlertools.DecodeJSON(r, &user); err != nil {
			respondError(w, "create_user", "", start,
				models.NewBadRequestError(fmt.Sprintf("malformed request body: %v", err)))
			return
		}
		if err := validate.Struct(&user); err != nil {
			respondError(w, "create_user", "", start, err)
			return
		}

		createdUser, err := appState.UserStore.Create(r.Context(), &user)
		if err != nil {
			respondError(w, "create_user", "", start, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := handlertools.EncodeJSON(w, createdUser); err != nil {
			log.Errorf("error encoding created user: %v", err)
		}
		logRequest("create_user", createdUser.UserID, start, "")
	}
}

// GetUserHandler handles GET /api/v1/users/{userId}.
func GetUserHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		userID, err := handlertools.UserIDFromURL(r, "userId")
		if err != nil {
			respondError(w, "get_user", "", start, err)
			return
		}

		user, err := appState.UserStore.Get(r.Context(), userID)
		if err != nil {
			respondError(w, "get_user", userID, start, err)
			return
		}

		if err := handlertools.EncodeJSON(w, user); err != nil {
			log.Errorf("error encoding user: %v", err)
		}
		logRequest("get_user", userID, start, "")
	}
}

// ListUsersHandler handles GET /api/v1/users with limit and cursor query
// params. The page includes a next_cursor iff the store reported more rows;
// a short page alone does not mean the list is exhausted.
func ListUsersHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		limit, err := handlertools.IntFromQuery[int](r, "limit")
		if err != nil {
			respondError(w, "list_users", "", start, &models.ValidationError{
				Fields: []models.FieldError{{Field: "limit", Reason: "must be an integer"}},
			})
			return
		}
		if r.URL.Query().Get("limit") == "" {
			limit = DefaultPageSize
		} else if limit < 1 || limit > MaxPageSize {
			respondError(w, "list_users", "", start, &models.ValidationError{
				Fields: []models.FieldError{{
					Field:  "limit",
					Reason: fmt.Sprintf("must be between 1 and %d", MaxPageSize),
				}},
			})
			return
		}

		cursor := r.URL.Query().Get("cursor")

		page, err := appState.UserStore.List(r.Context(), cursor, limit)
		if err != nil {
			respondError(w, "list_users", "", start, err)
			return
		}

		if err := handlertools.EncodeJSON(w, page); err != nil {
			log.Errorf("error encoding user page: %v", err)
		}
		logRequest("list_users", "", start, "")
	}
}

// UpdateUserHandler handles PUT /api/v1/users/{userId}. Changed fields are
// merged into the stored record; a record deleted concurrently surfaces as
// not found.
func UpdateUserHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		userID, err := handlertools.UserIDFromURL(r, "userId")
		if err != nil {
			respondError(w, "update_user", "", start, err)
			return
		}

		var user models.UpdateUserRequest
		if err := handlertools.DecodeJSON(r, &user); err != nil {
			respondError(w, "update_user", userID, start,
				models.NewBadRequestError(fmt.Sprintf("malformed request body: %v", err)))
			return
		}
		if user.IsEmpty() {
			respondError(w, "update_user", userID, start, &models.ValidationError{
				Fields: []models.FieldError{{
					Field:  "body",
					Reason: "at least one updatable field is required",
				}},
			})
			return
		}
		if err := validate.Struct(&user); err != nil {
			respondError(w, "update_user", userID, start, err)
			return
		}

		updatedUser, err := appState.UserStore.Update(r.Context(), userID, &user)
		if err != nil {
			respondError(w, "update_user", userID, start, err)
			return
		}

		if err := handlertools.EncodeJSON(w, updatedUser); err != nil {
			log.Errorf("error encoding updated user: %v", err)
		}
		logRequest("update_user", userID, start, "")
	}
}

// DeleteUserHandler handles DELETE /api/v1/users/{userId}. Hard delete;
// deleting an id that does not exist yields not found.
func DeleteUserHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		userID, err := handlertools.UserIDFromURL(r, "userId")
		if err != nil {
			respondError(w, "delete_user", "", start, err)
			return
		}

		if err := appState.UserStore.Delete(r.Context(), userID); err != nil {
			respondError(w, "delete_user", userID, start, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logRequest("delete_user", userID, start, "")
	}
}
