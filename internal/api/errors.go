package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chrisdamba/foodstore/internal/checkout"
	"github.com/chrisdamba/foodstore/internal/logging"
	"github.com/chrisdamba/foodstore/internal/repositories"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type errorPayload struct {
	Error     string                    `json:"error"`
	Message   string                    `json:"message"`
	Status    int                       `json:"status"`
	RequestID string                    `json:"request_id,omitempty"`
	Errors    checkout.ValidationErrors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, errorPayload{
		Error:     code,
		Message:   message,
		Status:    status,
		RequestID: middleware.GetReqID(ctx),
	})
}

// writeServiceError maps storefront and repository errors onto HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var verrs checkout.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{
			Error:     "validation_failed",
			Message:   "order request is invalid",
			Status:    http.StatusUnprocessableEntity,
			RequestID: middleware.GetReqID(ctx),
			Errors:    verrs,
		})
	case errors.Is(err, repositories.ErrNotFound):
		writeError(ctx, w, "not_found", err.Error(), http.StatusNotFound)
	case errors.Is(err, repositories.ErrOrderNotPending):
		writeError(ctx, w, "order_not_pending", err.Error(), http.StatusConflict)
	default:
		if _, ok := repositories.IsInsufficientStock(err); ok {
			writeError(ctx, w, "insufficient_stock", err.Error(), http.StatusConflict)
			return
		}
		logging.FromContext(ctx).Error("request failed", zap.Error(err))
		writeError(ctx, w, "internal_error", "failed to process request", http.StatusInternalServerError)
	}
}
