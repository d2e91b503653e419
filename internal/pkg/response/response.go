package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point, just log
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error logs err and writes an error response
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	switch {
	case err == nil:
		ctxzap.Warn(ctx, message, zap.Int("status", status))
	case status >= http.StatusInternalServerError:
		ctxzap.Error(ctx, message, zap.Int("status", status), zap.Error(err))
	default:
		ctxzap.Warn(ctx, message, zap.Int("status", status), zap.Error(err))
	}

	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// UsecaseError maps domain errors to HTTP statuses
func UsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := StatusFor(err)
	Error(ctx, w, status, message, err)
}

func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrProjectNotFound),
		errors.Is(err, entity.ErrSuggestionNotFound),
		errors.Is(err, entity.ErrMessageNotFound),
		errors.Is(err, entity.ErrConversationMissing):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrInvalidProject),
		errors.Is(err, entity.ErrUnknownStage),
		errors.Is(err, entity.ErrEmptyUtterance):
		return http.StatusBadRequest, "invalid parameter"
	case errors.Is(err, entity.ErrConversationBusy),
		errors.Is(err, entity.ErrSuggestionResolved):
		return http.StatusConflict, "conflict"
	case errors.Is(err, entity.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "AI provider unavailable"
	case errors.Is(err, entity.ErrFormatUnavailable):
		return http.StatusNotImplemented, "report format unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Attachment writes a downloadable file
func Attachment(w http.ResponseWriter, file *entity.ReportFile) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Content)
}
