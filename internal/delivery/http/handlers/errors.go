package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	casehttp "github.com/squeakroad/case-service/internal/delivery/http/dto/case"
	"github.com/squeakroad/case-service/internal/domain"
)

// StatusFor maps a domain error to its HTTP status and the message shown to
// the caller. Dependency and storage failures get a generic message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrOverflow),
		errors.Is(err, domain.ErrAmountMismatch):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrNotPaid),
		errors.Is(err, domain.ErrAlreadyAwarded),
		errors.Is(err, domain.ErrAlreadyCanceled):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrAdmissionDenied):
		return http.StatusTooManyRequests, "too many unpaid cases, try again later"
	case errors.Is(err, domain.ErrPaymentNodeUnavailable):
		return http.StatusServiceUnavailable, "payment node unavailable, try again later"
	case errors.Is(err, domain.ErrInvoiceCreationFailed):
		return http.StatusBadGateway, "could not create invoice, try again later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *CaseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, casehttp.ErrorResponse{Error: msg})
}
