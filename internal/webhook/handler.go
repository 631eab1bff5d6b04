package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/projectflow/internal/logging"
)

// ProjectEventBody is the inbound webhook payload. The record id lives at
// data.id; the legacy flat pageId shape is rejected explicitly.
type ProjectEventBody struct {
	PageID string `json:"pageId"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Handler exposes the project webhook over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the webhook handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the webhook routes on the given router group.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/projects", h.HandleProjectEvent)
}

// HandleProjectEvent processes one project created/edited event.
// Responses are plain text: 400 for an unusable payload, 200 for both
// success and skip, 500 for any downstream failure.
func (h *Handler) HandleProjectEvent(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.NewLogger(ctx)

	var body ProjectEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.LogError("webhook", err)
		c.String(http.StatusBadRequest, "invalid request body")
		return
	}

	if body.Data.ID == "" {
		if body.PageID != "" {
			c.String(http.StatusBadRequest, "legacy pageId payloads are not accepted; send the record id as data.id")
			return
		}
		c.String(http.StatusBadRequest, "missing record id (data.id)")
		return
	}

	msg, err := h.service.Provision(ctx, body.Data.ID)
	if err != nil {
		logger.LogError("webhook", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.String(http.StatusOK, msg)
}
