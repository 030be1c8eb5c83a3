package utils

import "context"

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
	ShopIDKey    contextKey = "shop_id"
)

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id int64, email string, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// SetShopContext records the shop a vendor token is bound to.
func SetShopContext(ctx context.Context, shopID int64) context.Context {
	return context.WithValue(ctx, ShopIDKey, shopID)
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func GetShopIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ShopIDKey).(int64)
	return id, ok
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRoleFromContext(ctx) == RoleAdmin
}
