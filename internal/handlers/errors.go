package handlers

import "net/http"

// ErrMessageInternal is the generic message for storage failures. Details go to the log.
const ErrMessageInternal = "internal server error"

// ErrorResponse defines standard error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// requestError is a failure caused by the request itself (bad body, bad id,
// missing field). It answers 500 like every other failure, but its message
// is safe to show the caller.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

var (
	errInvalidJSON      = &requestError{"invalid JSON body"}
	errInvalidID        = &requestError{"invalid user id"}
	errUsernameRequired = &requestError{"username is required"}
	errRoleRequired     = &requestError{"role is required"}
)
