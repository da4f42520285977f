package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/Riwi-io-Medellin/SQL/internal/models"
	"github.com/Riwi-io-Medellin/SQL/internal/repo"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkPresence runs the struct's required tags and maps the first missing
// field onto a request error.
func checkPresence(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "username":
			return errUsernameRequired
		case "role":
			return errRoleRequired
		default:
			return &requestError{verrs[0].Field() + " is required"}
		}
	}
	return err
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errInvalidJSON
	}
	return nil
}

type createUserInput struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role"`
}

type updateUserInput struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo *repo.UserRepo
	// DefaultRole is given to created users that arrive without a role.
	DefaultRole string
}

func (h *UserHandler) defaultRole() string {
	if h.DefaultRole == "" {
		return models.DefaultRole
	}
	return h.DefaultRole
}

// fail is the catch-all: not-found answers 404, everything else 500.
func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []any{
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	}

	var reqErr *requestError
	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		JSONError(w, "user not found", http.StatusNotFound)
	case errors.As(err, &reqErr):
		slog.WarnContext(r.Context(), "bad request", attrs...)
		JSONError(w, reqErr.msg, http.StatusInternalServerError)
	default:
		slog.ErrorContext(r.Context(), "request failed", attrs...)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repo.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	slog.DebugContext(r.Context(), "users listed", "count", len(users))
	writeJSON(w, http.StatusOK, users)
}

// ==========================
// Create User
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input createUserInput
	if err := decodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkPresence(input); err != nil {
		h.fail(w, r, err)
		return
	}
	if input.Role == "" {
		input.Role = h.defaultRole()
	}

	user, err := h.Repo.Create(r.Context(), input.Username, input.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user created", "id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Update User
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var input updateUserInput
	if err := decodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkPresence(input); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.Repo.Update(r.Context(), id, input.Username, input.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user updated", "id", user.ID)
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Delete User
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user %d deleted", id),
	})
}
