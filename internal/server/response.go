package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/history"
	"github.com/ppiankov/puppyjudge/internal/square"
	"github.com/ppiankov/puppyjudge/internal/storage"
	"github.com/ppiankov/puppyjudge/internal/verdict"
)

var (
	errSessionNotFound = errors.New("session not found")
	errBodyTooLarge    = errors.New("request body too large")
)

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorPayload{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	}})
}

// writeDomainError maps service errors onto status codes
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	writeError(w, r, status, code, err.Error())
}

func mapDomainError(err error) (int, string) {
	var (
		cfgErr     *verdict.ConfigurationError
		genErr     *verdict.GenerationError
		storageErr *storage.StorageError
		valErrs    validator.ValidationErrors
	)

	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, errSessionNotFound),
		errors.Is(err, history.ErrNotFound),
		errors.Is(err, square.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, verdict.ErrInvalidRequest),
		errors.Is(err, square.ErrEmptyComment),
		errors.Is(err, square.ErrInvalidSide),
		errors.As(err, &valErrs):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, court.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, court.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, court.ErrFinalVerdict):
		return http.StatusUnprocessableEntity, "final_verdict"
	case errors.Is(err, court.ErrAppealExpired):
		return http.StatusUnprocessableEntity, "appeal_expired"
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	case errors.As(err, &genErr):
		return http.StatusBadGateway, "generation_failed"
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeBody reads a JSON body into dst and validates it when it is a struct
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: malformed body: %v", verdict.ErrInvalidRequest, err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", verdict.ErrInvalidRequest, err)
	}
	return nil
}
