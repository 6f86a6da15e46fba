package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/controller"
	"github.com/unclebandit/crm-backend/internal/handler"
)

func New(cc *controller.CustomerController, th *handler.TransferHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Customer routes
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", cc.ListCustomers)
		r.Post("/", cc.CreateCustomer)
		r.Post("/bulk-delete", cc.BulkDelete)
		r.Post("/import", th.ImportCustomers)
		r.Get("/export", th.ExportCustomers)
		r.Get("/{id}", cc.GetCustomer)
		r.Put("/{id}", cc.UpdateCustomer)
		r.Delete("/{id}", cc.DeleteCustomer)
	})
	r.Get("/audit", cc.RecentAudit)

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
