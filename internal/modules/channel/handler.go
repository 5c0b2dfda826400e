package channel

import (
	"context"
	"errors"
	"net/http"

	"cliptube/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages HTTP interactions for channel profiles and subscriptions
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterViewerRoutes go behind optional auth: anonymous viewers get the
// profile without an is_subscribed flag.
func (h *Handler) RegisterViewerRoutes(viewer *gin.RouterGroup) {
	viewer.GET("/channels/:username", h.GetProfile)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/channels/:username/subscription", h.Subscribe)
	protected.DELETE("/channels/:username/subscription", h.Unsubscribe)
}

func (h *Handler) GetProfile(c *gin.Context) {
	username := c.Param("username")
	viewerID := c.GetInt64("user_id") // 0 when anonymous

	profile, err := h.service.Profile(c.Request.Context(), username, viewerID)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			response.Error(c, http.StatusNotFound, "CHANNEL_NOT_FOUND", "Channel does not exist")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CHANNEL_FAILED", "Failed to load channel profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"channel": profile,
	})
}

func (h *Handler) Subscribe(c *gin.Context) {
	h.toggle(c, h.service.Subscribe, "Subscribed successfully")
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	h.toggle(c, h.service.Unsubscribe, "Unsubscribed successfully")
}

func (h *Handler) toggle(c *gin.Context, op func(ctx context.Context, subscriberID int64, channelUsername string) error, message string) {
	userID := c.GetInt64("user_id")
	username := c.Param("username")

	if err := op(c.Request.Context(), userID, username); err != nil {
		switch {
		case errors.Is(err, ErrChannelNotFound):
			response.Error(c, http.StatusNotFound, "CHANNEL_NOT_FOUND", "Channel does not exist")
		case errors.Is(err, ErrSelfSubscription):
			response.Error(c, http.StatusBadRequest, "SELF_SUBSCRIPTION", "You cannot subscribe to your own channel")
		default:
			response.Error(c, http.StatusInternalServerError, "SUBSCRIPTION_FAILED", "Failed to update subscription")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": message,
	})
}
