package httpapi

import (
	"context"
	"net/http"
	"time"

	"localcart-be/internal/address"
	"localcart-be/internal/notification"
	"localcart-be/internal/order"
	"localcart-be/internal/product"
	"localcart-be/internal/shop"
	"localcart-be/internal/unit"
	"localcart-be/internal/user"
	"localcart-be/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	tokenCookie    = "access_token"
	tokenCookieAge = 24 * 60 * 60
)

// Deps are the services behind the REST surface.
type Deps struct {
	Users         user.Service
	Shops         shop.Service
	Units         unit.Service
	Products      product.Service
	Images        *product.DiskStore
	Addresses     address.Service
	Orders        order.Service
	Notifications notification.Service
	Broadcaster   notification.Broadcaster

	// Ping reports database health; nil skips the check.
	Ping func(ctx context.Context) error

	KeepAlive    time.Duration
	SecureCookie bool
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	if d.KeepAlive <= 0 {
		d.KeepAlive = 25 * time.Second
	}
	return &Handler{Deps: d}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	orders := api.Group("/orders")
	orders.POST("", h.PlaceOrder)
	orders.GET("/user", h.UserOrders)
	orders.GET("/shop/:shopId", h.ShopOrders)
	orders.PATCH("/:id/status", h.UpdateOrderStatus)

	notifications := api.Group("/notifications")
	notifications.GET("/stream", h.StreamNotifications)
	notifications.GET("", h.ListNotifications)
	notifications.POST("/:id/read", h.MarkNotificationRead)

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.POST("", h.CreateProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.PATCH("/:id/stock", h.AdjustStock)

	addresses := api.Group("/address")
	addresses.GET("", h.ListAddresses)
	addresses.POST("", h.SaveAddress)
	addresses.DELETE("/:id", h.DeleteAddress)
	addresses.POST("/:id/default", h.SetDefaultAddress)

	shops := api.Group("/shops")
	shops.GET("/:slug", h.GetShop)
	shops.POST("", h.CreateShop)

	units := api.Group("/units")
	units.GET("", h.ListUnits)
	units.POST("", requireRole(utils.RoleVendor, utils.RoleAdmin), h.CreateUnit)
}

func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}

	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		}
	}
	if h.Broadcaster != nil {
		body["notifications"] = h.Broadcaster.Stats()
	}

	c.JSON(status, body)
}

// requireRole rejects anonymous callers and callers outside roles.
func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := utils.GetUserIDFromContext(ctx); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		role := utils.GetUserRoleFromContext(ctx)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// int64Param parses a positive path parameter, answering 400 otherwise.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ToInt64(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
