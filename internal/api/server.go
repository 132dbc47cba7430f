// Package api exposes the storefront over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/chrisdamba/foodstore/internal/logging"
	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	svc *storefront.Service
}

func NewRouter(svc *storefront.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Route("/stores/{storeID}", func(r chi.Router) {
		r.Get("/slots", h.slots)
		r.Post("/quote", h.quote)
		r.Post("/orders", h.placeOrder)
	})
	r.Post("/orders/{orderID}/payment-confirmation", h.confirmPayment)
	return r
}

// requestLogger puts a request-scoped logger on the context and logs completion.
func requestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), logger)))

			logger.Info("request completed",
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)))
		})
	}
}
