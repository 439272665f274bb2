// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application answers in JSON. Error bodies always
// share one shape so the add-school form can show the message as is:
//
//	{ "status": "error", "message": "Invalid email format" }
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope returned for error cases.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Client-facing messages, part of the HTTP contract.
const (
	MsgCreated          = "School added successfully"
	MsgRequired         = "All fields are required"
	MsgInvalidEmail     = "Invalid email format"
	MsgInvalidPhone     = "Invalid phone number format"
	MsgNotImage         = "Only image files are allowed!"
	MsgTooLarge         = "File too large"
	MsgMethodNotAllowed = "Method not allowed"
	MsgNotFound         = "School not found"
	MsgInvalidID        = "Invalid id: must be an integer"
	MsgInvalidForm      = "Invalid form data"
	MsgInternal         = "Internal server error"
)

// WriteJSON writes data as JSON with the given status code.
//
// Header() → WriteHeader() → body, in that order: headers are locked once
// the status line is out.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Error wraps a client-facing message into the error envelope.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// MethodNotAllowed writes a 405 with the Allow header set.
func MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteJSON(w, http.StatusMethodNotAllowed, Error(MsgMethodNotAllowed))
}

// ValidationError reduces validator failures to the single message a
// client sees. Missing fields win over a malformed email, which wins over
// a malformed phone number, regardless of struct field order.
func ValidationError(errs validator.ValidationErrors) Response {
	var email, phone bool

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			return Error(MsgRequired)
		case "school_email", "email":
			email = true
		case "phone":
			phone = true
		}
	}

	switch {
	case email:
		return Error(MsgInvalidEmail)
	case phone:
		return Error(MsgInvalidPhone)
	default:
		return Error(MsgRequired)
	}
}
