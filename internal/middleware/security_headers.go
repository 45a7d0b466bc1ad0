package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"goldshop/pkg/httperror"
)

type contextKey string

const (
	userIDKey    contextKey = "UserID"
	userEmailKey contextKey = "UserEmail"
	jwtKey       contextKey = "Jwt"
)

// NewSecurityHeadersMiddleware requires the identity headers set by the
// gateway and copies them into the request's user context.
func NewSecurityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("User-ID"))
		userEmail := strings.TrimSpace(c.Get("User-Email"))
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))

		if userID == "" || userEmail == "" || authorization == "" {
			return unauthorized(c)
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		c.SetUserContext(WithIdentity(userCtx, userID, userEmail, authorization))
		return c.Next()
	}
}

func WithIdentity(ctx context.Context, userID, userEmail, jwt string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userEmailKey, userEmail)
	return context.WithValue(ctx, jwtKey, jwt)
}

// UserID returns the caller's id, or "" outside the middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

func unauthorized(c *fiber.Ctx) error {
	err := httperror.Unauthorized(
		"goldshop.security_headers.unauthorized",
		"Security headers mismatch",
		nil,
	)

	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
