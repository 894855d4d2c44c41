package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/server/http/dto"
)

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed order payload")
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentActor(c), toCreateOrderInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", "/api/orders/"+order.ID.String())
	respondOrder(c, http.StatusCreated, order)
}

// List handles GET /api/orders?status=&limit=.
func (h *OrderHandler) List(c *gin.Context) {
	status := model.OrderStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		badRequest(c, "unknown status filter")
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	orders, err := h.facade.Orders(c.Request.Context(), CurrentActor(c), status, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, toOrderResponses(orders))
}

// Available handles GET /api/partner/orders/available.
func (h *OrderHandler) Available(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	orders, err := h.facade.AvailableOrders(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, toOrderResponses(orders))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	h.apply(c, h.facade.Order)
}

// Claim handles POST /api/orders/:id/claim.
func (h *OrderHandler) Claim(c *gin.Context) {
	h.apply(c, h.facade.ClaimOrder)
}

// Start handles POST /api/orders/:id/start.
func (h *OrderHandler) Start(c *gin.Context) {
	h.apply(c, h.facade.StartWork)
}

// RequestCompletion handles POST /api/orders/:id/completion/request.
func (h *OrderHandler) RequestCompletion(c *gin.Context) {
	h.apply(c, h.facade.RequestCompletion)
}

// ConfirmCompletion handles POST /api/orders/:id/completion/confirm.
func (h *OrderHandler) ConfirmCompletion(c *gin.Context) {
	h.apply(c, h.facade.ConfirmCompletion)
}

// Cancel handles POST /api/orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "malformed cancel payload")
		return
	}
	h.apply(c, func(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
		return h.facade.CancelOrder(ctx, actor, id, req.Reason)
	})
}

type orderAction func(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)

func (h *OrderHandler) apply(c *gin.Context, action orderAction) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := action(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, order)
}
