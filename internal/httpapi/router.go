package httpapi

import (
	"net/http"

	"localcart-be/internal/auth"
	"localcart-be/internal/logger"
	"localcart-be/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries what the outer middleware needs.
type RouterConfig struct {
	Tokens     *auth.Manager
	Limiter    *middleware.RateLimiter
	CORSOrigin string
	UploadDir  string
}

// NewRouter builds the gin engine and wraps it in the net/http middleware
// chain: request id, CORS, auth, access log, then rate limiting.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = true

	if cfg.UploadDir != "" {
		engine.Static("/uploads", cfg.UploadDir)
	}
	h.RegisterRoutes(engine)

	mws := []func(http.Handler) http.Handler{
		logger.RequestIDMiddleware,
		middleware.CORS(cfg.CORSOrigin),
		middleware.AuthMiddleware(cfg.Tokens),
		logger.LoggingMiddleware(middleware.RequestUserID),
	}
	if cfg.Limiter != nil {
		mws = append(mws, cfg.Limiter.Middleware)
	}

	return middleware.Chain(engine, mws...)
}
