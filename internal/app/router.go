package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lotpilot/lotpilot/internal/lifecycle"
	"github.com/lotpilot/lotpilot/internal/masterdata/bankaccounts"
	"github.com/lotpilot/lotpilot/internal/masterdata/suppliers"
	"github.com/lotpilot/lotpilot/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	OrderHandler       *lifecycle.Handler
	SupplierHandler    *suppliers.Handler
	BankAccountHandler *bankaccounts.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with Lotpilot defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/orders", params.OrderHandler.MountRoutes)
	if params.SupplierHandler != nil {
		r.Route("/api/suppliers", params.SupplierHandler.MountRoutes)
	}
	if params.BankAccountHandler != nil {
		r.Route("/api/bank-accounts", params.BankAccountHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
