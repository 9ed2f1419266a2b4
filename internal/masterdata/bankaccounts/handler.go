package bankaccounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lotpilot/lotpilot/internal/platform/httpx"
)

// Handler exposes the active-account listing used by payment previews.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("bank account list", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if accounts == nil {
		accounts = []BankAccount{}
	}
	httpx.JSON(w, http.StatusOK, accounts)
}
