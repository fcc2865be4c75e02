package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cleared-dev/grassjelly/internal/group"
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// writeError maps ledger errors onto status codes. Anything unexpected is
// logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verrs validator.ValidationErrors
	var bad badRequest
	switch {
	case errors.As(err, &bad):
		writeProblem(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, group.ErrInvalid), errors.As(err, &verrs):
		writeProblem(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, group.ErrNotFound):
		writeProblem(w, http.StatusNotFound, err.Error())
	case errors.Is(err, group.ErrDuplicate):
		writeProblem(w, http.StatusConflict, err.Error())
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeProblem(w, http.StatusInternalServerError, "")
	}
}

type badRequest struct{ err error }

func (e badRequest) Error() string { return "decoding request: " + e.err.Error() }

// decode reads a JSON body into dst and validates its struct tags.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest{err}
	}
	return h.validate.Struct(dst)
}
