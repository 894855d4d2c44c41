package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/server/http/dto"
	"github.com/polkiloo/homebooking/internal/server/http/middleware"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{}
	}
	actor, _ := val.(model.Actor)
	return actor
}

// writeError maps err to its HTTP status and a JSON error body. Internal
// failures never leak their message.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := domainErrors.CodeOf(err)
	md := domainErrors.MetadataFor(code)
	resp := dto.ErrorResponse{
		Code:      string(code),
		Message:   md.PublicMessage,
		Retryable: md.Retryable,
	}
	if e, ok := domainErrors.As(err); ok && code != domainErrors.CodeInternal {
		resp.Detail = e.Message()
	}
	c.AbortWithStatusJSON(md.HTTPStatus, resp)
}

func badRequest(c *gin.Context, detail string) {
	writeError(c, domainErrors.New(domainErrors.CodeValidation, detail))
}

// pathID parses the :id path parameter, answering 400 when it is not a uuid.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit reads ?limit=, defaulting and clamping to the list bounds.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return 0, false
	}
	return min(limit, maxListLimit), true
}

func respondOrder(c *gin.Context, status int, order *model.Order) {
	c.JSON(status, toOrderResponse(order))
}

func respondOK(c *gin.Context, v any) {
	c.JSON(http.StatusOK, v)
}
