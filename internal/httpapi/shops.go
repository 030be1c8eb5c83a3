package httpapi

import (
	"net/http"

	"localcart-be/internal/logger"
	"localcart-be/internal/shop"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) GetShop(c *gin.Context) {
	s, err := h.Shops.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// CreateShop also reissues the vendor's token so it carries the new shop.
func (h *Handler) CreateShop(c *gin.Context) {
	var input shop.CreateShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	s, err := h.Shops.Create(ctx, input)
	if err != nil {
		fail(c, err)
		return
	}

	body := gin.H{"shop": s}
	sess, err := h.Users.Refresh(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("token not refreshed after shop creation",
			zap.Int64("shop_id", s.ID),
			zap.Error(err),
		)
	} else {
		h.setToken(c, sess.Token)
		body["token"] = sess.Token
	}

	c.JSON(http.StatusCreated, body)
}
