package middleware

import (
	"net/http"

	"localcart-be/internal/auth"
	"localcart-be/internal/logger"
	"localcart-be/internal/utils"

	"go.uber.org/zap"
)

// AuthMiddleware is passive: requests without a token pass through
// anonymously, a present but invalid token is rejected.
func AuthMiddleware(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("rejected access token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			if claims.ShopID != nil {
				ctx = utils.SetShopContext(ctx, *claims.ShopID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestUserID reads the authenticated user for access logs.
func RequestUserID(r *http.Request) (int64, bool) {
	return utils.GetUserIDFromContext(r.Context())
}
