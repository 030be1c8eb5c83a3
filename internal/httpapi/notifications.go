package httpapi

import (
	"net/http"
	"time"

	"localcart-be/internal/logger"
	"localcart-be/internal/notification"
	"localcart-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StreamNotifications keeps an SSE response open for the vendor's shop
// until the client goes away.
func (h *Handler) StreamNotifications(c *gin.Context) {
	ctx := c.Request.Context()

	var requested int64
	if v := c.Query("shopId"); v != "" {
		id, err := utils.ToInt64(v)
		if err != nil {
			badRequest(c, "invalid shopId")
			return
		}
		requested = id
	}

	shopID, err := h.Notifications.StreamShop(ctx, requested)
	if err != nil {
		fail(c, err)
		return
	}

	sub := h.Broadcaster.Subscribe(shopID)
	defer h.Broadcaster.Unsubscribe(sub)

	log := logger.FromCtx(ctx).With(zap.Int64("shop_id", shopID))
	log.Info("notification stream opened")
	defer log.Info("notification stream closed")

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if err := notification.WriteComment(c.Writer, "connected"); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			if err := notification.WriteFrame(c.Writer, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := notification.WriteComment(c.Writer, "keepalive"); err != nil {
				return
			}
		}
		c.Writer.Flush()
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	msgs, err := h.Notifications.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.Notifications.MarkRead(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}
