package lifecycle

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lotpilot/lotpilot/internal/platform/httpx"
	"github.com/lotpilot/lotpilot/internal/shared"
)

// Handler exposes the lifecycle engine over JSON. Permission checks happen
// upstream; by the time a request lands here the caller is authorized.
type Handler struct {
	logger   *slog.Logger
	engine   *Engine
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, engine: engine, validate: validator.New()}
}

// MountRoutes registers order lifecycle routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.getOrder)
	r.Get("/{id}/payment-preview", h.paymentPreview)
	r.Get("/{id}/transition-kind", h.transitionKind)
	r.Post("/{id}/advance", h.advance)
	r.Post("/{id}/receive", h.receive)
	r.Post("/{id}/receive-preview", h.receivePreview)
	r.Post("/{id}/history/{entryID}", h.editHistory)
}

type fieldsRequest struct {
	ExchangeRate      float64 `json:"exchangeRate"`
	PaymentAccountID  int64   `json:"paymentAccountId"`
	CourierName       string  `json:"courierName"`
	TrackingNumber    string  `json:"trackingNumber"`
	LotNumber         string  `json:"lotNumber"`
	TransportType     string  `json:"transportType"`
	TotalWeight       float64 `json:"totalWeight"`
	ShippingCostPerKg float64 `json:"shippingCostPerKg"`
	BDCourierTracking string  `json:"bdCourierTracking"`
	Comments          string  `json:"comments"`
}

func (f fieldsRequest) toDomain() TransitionFields {
	return TransitionFields{
		ExchangeRate:      f.ExchangeRate,
		PaymentAccountID:  f.PaymentAccountID,
		CourierName:       f.CourierName,
		TrackingNumber:    f.TrackingNumber,
		LotNumber:         f.LotNumber,
		TransportType:     f.TransportType,
		TotalWeight:       f.TotalWeight,
		ShippingCostPerKg: f.ShippingCostPerKg,
		BDCourierTracking: f.BDCourierTracking,
		Comments:          f.Comments,
	}
}

type advanceRequest struct {
	FromStatus string        `json:"fromStatus" validate:"required"`
	ToStatus   string        `json:"toStatus" validate:"required"`
	ActorID    int64         `json:"actorId"`
	Fields     fieldsRequest `json:"fields"`
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req advanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	res, err := h.engine.Advance(r.Context(), AdvanceInput{
		OrderID: orderID,
		From:    Status(req.FromStatus),
		To:      Status(req.ToStatus),
		ActorID: req.ActorID,
		Fields:  req.Fields.toDomain(),
	})
	h.respondMutation(w, r, res, err)
}

type receiptLineRequest struct {
	ItemID   int64   `json:"itemId" validate:"required"`
	Received float64 `json:"receivedQuantity"`
	Lost     float64 `json:"lostQuantity"`
}

type receiveRequest struct {
	FromStatus string               `json:"fromStatus" validate:"required"`
	ActorID    int64                `json:"actorId"`
	ExtraCost  float64              `json:"extraCost"`
	Comments   string               `json:"comments"`
	Items      []receiptLineRequest `json:"items" validate:"min=1,dive"`
}

func (r receiveRequest) receipt() ReceiptInput {
	lines := make([]ReceiptLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, ReceiptLine{ItemID: it.ItemID, Received: it.Received, Lost: it.Lost})
	}
	return ReceiptInput{Lines: lines, ExtraCost: r.ExtraCost, Comments: r.Comments}
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req receiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	res, err := h.engine.Receive(r.Context(), ReceiveInput{
		OrderID: orderID,
		From:    Status(req.FromStatus),
		ActorID: req.ActorID,
		Receipt: req.receipt(),
	})
	h.respondMutation(w, r, res, err)
}

func (h *Handler) receivePreview(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req receiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	decision, violations, err := h.engine.ReceivePreview(r.Context(), orderID, req.receipt())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if len(violations) > 0 {
		httpx.JSON(w, http.StatusBadRequest, map[string]any{"ok": false, "errors": violations})
		return
	}
	httpx.JSON(w, http.StatusOK, decision)
}

type editHistoryRequest struct {
	Status  string        `json:"status" validate:"required"`
	ActorID int64         `json:"actorId"`
	Fields  fieldsRequest `json:"fields"`
}

func (h *Handler) editHistory(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Entry ID", err.Error())
		return
	}
	var req editHistoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	res, err := h.engine.EditHistoryEntry(r.Context(), EditHistoryInput{
		OrderID: orderID,
		EntryID: entryID,
		Status:  Status(req.Status),
		ActorID: req.ActorID,
		Fields:  req.Fields.toDomain(),
	})
	h.respondMutation(w, r, res, err)
}

type orderResponse struct {
	Order   Order                `json:"order"`
	Items   []OrderItem          `json:"items"`
	History []StatusHistoryEntry `json:"history"`
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, items, history, err := h.engine.Get(r.Context(), orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orderResponse{Order: order, Items: items, History: history})
}

func (h *Handler) paymentPreview(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	preview, err := h.engine.PaymentPreview(r.Context(), orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, preview)
}

func (h *Handler) transitionKind(w http.ResponseWriter, r *http.Request) {
	from := Status(strings.TrimSpace(r.URL.Query().Get("from")))
	to := Status(strings.TrimSpace(r.URL.Query().Get("to")))
	if !IsValid(from) || !IsValid(to) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Status", "from and to must be chain statuses")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"kind": string(h.engine.TransitionKind(from, to))})
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Order ID", "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

// respondMutation renders the uniform {ok, order, errors[]} envelope and maps
// domain failures onto status codes.
func (h *Handler) respondMutation(w http.ResponseWriter, r *http.Request, res Result, err error) {
	if err == nil {
		httpx.JSON(w, http.StatusOK, res)
		return
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvariant):
		httpx.JSON(w, http.StatusBadRequest, res)
	default:
		h.respondError(w, r, err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Status Conflict", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Submission", err.Error())
	case errors.Is(err, ErrIllegalTransition):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Illegal Transition", err.Error())
	case errors.Is(err, ErrReceivingRequired):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Receiving Required", err.Error())
	case errors.Is(err, ErrTerminal):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Order Settled", err.Error())
	default:
		h.logger.Error("lifecycle request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
