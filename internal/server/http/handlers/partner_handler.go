package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homebooking/internal/server/http/dto"
	"github.com/polkiloo/homebooking/internal/usecase"
)

// PartnerHandler serves partner-facing and partner registry endpoints.
type PartnerHandler struct {
	facade PartnerFacade
}

// NewPartnerHandler constructs PartnerHandler.
func NewPartnerHandler(facade PartnerFacade) *PartnerHandler {
	return &PartnerHandler{facade: facade}
}

// Notifications handles GET /api/partner/notifications.
func (h *PartnerHandler) Notifications(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	notes, err := h.facade.Notifications(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.NotificationResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNotificationResponse(n))
	}
	respondOK(c, resp)
}

// Profile handles GET /api/partner/profile.
func (h *PartnerHandler) Profile(c *gin.Context) {
	partner, err := h.facade.PartnerProfile(c.Request.Context(), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, toPartnerResponse(partner))
}

// Upsert handles PUT /api/admin/partners/:id. Omitting "active" registers an active partner.
func (h *PartnerHandler) Upsert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed partner payload")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	partner, err := h.facade.UpsertPartner(c.Request.Context(), CurrentActor(c), id, usecase.PartnerInput{Name: req.Name, Active: active})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPartnerResponse(partner))
}
