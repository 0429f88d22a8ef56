package middleware

import (
	"net/http"
	"strings"

	authentication "github.com/Alwanly/service-env-state/pkg/auth"
	"github.com/Alwanly/service-env-state/pkg/wrapper"
	"github.com/gofiber/fiber/v2"
)

type IAuthMiddleware interface {
	// Basic Auth, reader or admin
	BasicAuth() fiber.Handler

	// Basic Auth Admin
	BasicAuthAdmin() fiber.Handler
}

type AuthMiddleware struct {
	Basic authentication.IBasicAuthService
}

// mockery:ignore
type AuthConfig func(*AuthOpts)

type AuthOpts struct {
	*authentication.BasicAuthTConfig
}

func SetBasicAuth(basicAuthConfig *authentication.BasicAuthTConfig) AuthConfig {
	return func(o *AuthOpts) {
		o.BasicAuthTConfig = basicAuthConfig
	}
}

func NewAuthMiddleware(opts ...AuthConfig) *AuthMiddleware {
	var o AuthOpts
	for _, opt := range opts {
		opt(&o)
	}

	basicAuth := authentication.NewBasicAuthService(o.BasicAuthTConfig)

	return &AuthMiddleware{
		Basic: basicAuth,
	}
}

// BasicAuth accepts reader or admin credentials.
func (a *AuthMiddleware) BasicAuth() fiber.Handler {
	return a.basic(a.Basic.ValidateReader)
}

func (a *AuthMiddleware) BasicAuthAdmin() fiber.Handler {
	return a.basic(a.Basic.ValidateAdmin)
}

func (a *AuthMiddleware) basic(validate func(username, password string) bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		auth := ctx.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, "Basic ") {
			return responseUnauthorized(ctx, "missing basic credentials")
		}

		username, password := a.Basic.DecodeFromHeader(auth)
		if !validate(username, password) {
			return responseUnauthorized(ctx, "invalid credentials")
		}
		return ctx.Next()
	}
}

func responseUnauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="env"`)
	return c.Status(http.StatusUnauthorized).JSON(wrapper.ResponseFailed(http.StatusUnauthorized, message, nil))
}
