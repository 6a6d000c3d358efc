package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"pedidos-api/internal/entities"
	"pedidos-api/internal/middleware"
	"pedidos-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	Create(ctx context.Context, payload []byte) (entities.Order, error)
	Get(ctx context.Context, orderID string) (entities.Order, error)
	List(ctx context.Context, page, size int) (entities.OrderList, error)
	Update(ctx context.Context, orderID string, payload []byte) (entities.Order, error)
	Delete(ctx context.Context, orderID string) error
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	verifier middleware.TokenVerifier
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService, verifier middleware.TokenVerifier) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
		verifier: verifier,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/order", func(r chi.Router) {
		r.Use(middleware.Auth(h.verifier))

		r.Post("/", h.CreateOrder)
		r.Get("/list", h.ListOrders)
		r.Get("/{orderId}", h.GetOrder)
		r.Put("/{orderId}", h.UpdateOrder)
		r.Delete("/{orderId}", h.DeleteOrder)
	})
}

// CreateOrder creates an order from a legacy or canonical payload.
// @Summary      Create order
// @Description  Accepts the legacy submission shape (numeroPedido/valorTotal/dataCriacao) or the canonical one and persists the order with its items.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Validation failure"
// @Failure      401  {object}  utils.ErrorResponse "Missing or invalid token"
// @Failure      409  {object}  utils.ErrorResponse "Order already exists"
// @Router       /order [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("failed to read request body", nil))
		return
	}

	order, err := h.svc.Create(ctx, payload)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	w.Header().Set("Location", "/order/"+order.OrderID)
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// GetOrder returns one order by id.
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        orderId  path  string  true  "Order identifier"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Router       /order/{orderId} [get]
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := chi.URLParam(r, "orderId")
	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("orderId is required", nil))
		return
	}

	order, err := h.svc.Get(ctx, orderID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// ListOrders returns a page of orders, most recent first.
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        page  query  int  false  "Page number, defaults to 1"
// @Param        size  query  int  false  "Page size, defaults to 10, capped at 100"
// @Success      200  {object}  OrderList
// @Router       /order/list [get]
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := queryInt(r, "page")
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}

	list, err := h.svc.List(ctx, page, size)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderListEntityToJSON(list), http.StatusOK)
}

// UpdateOrder fully replaces an order: scalars and the whole item set.
// @Summary      Replace order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderId  path  string  true  "Order identifier"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Router       /order/{orderId} [put]
func (h *HTTPHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := chi.URLParam(r, "orderId")
	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("orderId is required", nil))
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("failed to read request body", nil))
		return
	}

	order, err := h.svc.Update(ctx, orderID, payload)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// DeleteOrder removes an order and its items.
// @Summary      Delete order
// @Tags         orders
// @Param        orderId  path  string  true  "Order identifier"
// @Success      204  "Deleted"
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Router       /order/{orderId} [delete]
func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := chi.URLParam(r, "orderId")
	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("orderId is required", nil))
		return
	}

	if err := h.svc.Delete(ctx, orderID); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError renders err; non-domain errors are logged here because the
// client only ever sees a masked internal error for them.
func (h *HTTPHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var domainErr *entities.Error
	if !errors.As(err, &domainErr) {
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
	}
	utils.WriteDomainError(w, err)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entities.NewValidationError(key+" must be an integer", nil)
	}
	return v, nil
}
