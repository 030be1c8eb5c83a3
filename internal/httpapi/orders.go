package httpapi

import (
	"net/http"

	"localcart-be/internal/order"

	"github.com/gin-gonic/gin"
)

func (h *Handler) PlaceOrder(c *gin.Context) {
	var input order.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.Orders.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"orderId": o.ID,
	})
}

func (h *Handler) UserOrders(c *gin.Context) {
	orders, err := h.Orders.UserOrders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ShopOrders(c *gin.Context) {
	shopID, ok := int64Param(c, "shopId")
	if !ok {
		return
	}

	orders, err := h.Orders.ShopOrders(c.Request.Context(), shopID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var input order.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.Orders.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
