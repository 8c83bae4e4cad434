package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/wcckavaliers/scorebook/internal/usecase"
)

const (
	apiVersion  = "1.0"
	errorDomain = "scorebook"
)

type responseEnvelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, responseEnvelope{
		APIVersion: apiVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, responseEnvelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Domain:  errorDomain,
			Reason:  mapped.Reason,
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	const msg = "internal server error"
	writeJSON(ctx, w, http.StatusInternalServerError, responseEnvelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Domain:  errorDomain,
			Reason:  "internalError",
		},
	})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrMalformedExtraction),
		errors.Is(err, usecase.ErrUnresolvableResult):
		return mappedError{http.StatusUnprocessableEntity, "unusableReport", "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrDuplicateReport):
		return mappedError{http.StatusConflict, "duplicateReport", "ALREADY_EXISTS"}
	case errors.Is(err, usecase.ErrAmbiguousRevert):
		return mappedError{http.StatusConflict, "ambiguousRevert", "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrNothingToRevert),
		errors.Is(err, usecase.ErrNotFound):
		return mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}
	case errors.Is(err, usecase.ErrDependencyUnavailable),
		errors.Is(err, usecase.ErrNoCandidates),
		errors.Is(err, usecase.ErrAllProvidersExhausted):
		return mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}
	default:
		return mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}
	}
}
