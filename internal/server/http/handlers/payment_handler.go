package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homebooking/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/server/http/dto"
)

// PaymentHandler receives gateway callbacks and serves the review queue.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Return handles GET /api/payments/return, the customer's redirect back from the gateway.
func (h *PaymentHandler) Return(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBindQuery(&n); err != nil || n.OrderID == "" {
		badRequest(c, "order_id is required")
		return
	}

	res, err := h.facade.ReturnPayment(c.Request.Context(), n)
	if err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, toReconciliationResponse(n.OrderID, res))
}

// Notify handles POST /api/payments/notify. A report whose amount disagrees with the
// order is acknowledged once queued for review so the gateway stops redelivering it.
func (h *PaymentHandler) Notify(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBindJSON(&n); err != nil || n.OrderID == "" {
		badRequest(c, "malformed notification payload")
		return
	}

	res, err := h.facade.NotifyPayment(c.Request.Context(), n)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAmountMismatch) {
			_ = c.Error(err)
			c.JSON(http.StatusOK, dto.ReconciliationResponse{Outcome: string(domainErrors.CodeAmountMismatch), OrderID: n.OrderID})
			return
		}
		writeError(c, err)
		return
	}
	respondOK(c, toReconciliationResponse(n.OrderID, res))
}

// Reviews handles GET /api/admin/payment-reviews.
func (h *PaymentHandler) Reviews(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	reviews, err := h.facade.PaymentReviews(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.PaymentReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, toReviewResponse(r))
	}
	respondOK(c, resp)
}
