package httpapi

import (
	"errors"
	"net/http"

	"localcart-be/internal/address"
	"localcart-be/internal/logger"
	"localcart-be/internal/notification"
	"localcart-be/internal/order"
	"localcart-be/internal/product"
	"localcart-be/internal/shop"
	"localcart-be/internal/unit"
	"localcart-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

var statusByError = []struct {
	err  error
	code int
}{
	{errBadRequest, http.StatusBadRequest},
	{order.ErrEmptyCart, http.StatusBadRequest},
	{order.ErrInvalidCartLine, http.StatusBadRequest},
	{order.ErrInvalidOrder, http.StatusBadRequest},
	{order.ErrUnknownShop, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{product.ErrInvalidProduct, http.StatusBadRequest},
	{product.ErrInvalidImage, http.StatusBadRequest},
	{product.ErrInsufficientStock, http.StatusBadRequest},
	{address.ErrInvalidAddress, http.StatusBadRequest},
	{shop.ErrInvalidShop, http.StatusBadRequest},
	{unit.ErrInvalidUnit, http.StatusBadRequest},
	{user.ErrInvalidRole, http.StatusBadRequest},

	{order.ErrUnauthorized, http.StatusUnauthorized},
	{product.ErrUnauthorized, http.StatusUnauthorized},
	{shop.ErrUnauthorized, http.StatusUnauthorized},
	{address.ErrUnauthenticated, http.StatusUnauthorized},
	{notification.ErrUnauthorized, http.StatusUnauthorized},
	{user.ErrUnauthorized, http.StatusUnauthorized},
	{user.ErrInvalidCredentials, http.StatusUnauthorized},

	{order.ErrForbidden, http.StatusForbidden},
	{shop.ErrForbidden, http.StatusForbidden},
	{notification.ErrForbidden, http.StatusForbidden},

	{order.ErrOrderNotFound, http.StatusNotFound},
	{product.ErrProductNotFound, http.StatusNotFound},
	{shop.ErrShopNotFound, http.StatusNotFound},
	{address.ErrAddressNotFound, http.StatusNotFound},
	{notification.ErrNotificationNotFound, http.StatusNotFound},
	{unit.ErrUnitNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},

	{order.ErrStatusConflict, http.StatusConflict},
	{user.ErrEmailExists, http.StatusConflict},
	{shop.ErrSlugTaken, http.StatusConflict},
}

func statusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return http.StatusInternalServerError
}

// fail writes {"error": msg}. Server errors are logged and never expose
// the cause.
func fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(code, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
