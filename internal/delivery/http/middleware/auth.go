package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"easysign/internal/domain/entity"
	"easysign/internal/infrastructure/auth"
	"easysign/internal/usecase"
)

const signerKey = "signer"

// tokenCookie is read when no Authorization header is present
const tokenCookie = "Authorization"

type AuthMiddleware struct {
	tokens auth.TokenService
	users  usecase.UserUsecase
	logger *zap.Logger
}

func NewAuthMiddleware(tokens auth.TokenService, users usecase.UserUsecase, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Handler verifies the caller's token, mirrors the user and stores the signer in Locals
func (m *AuthMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(tokenCookie)
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			m.logger.Debug("Unauthorized request",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(
				entity.NewErrorResponse(entity.KindUnauthorized, "Invalid or missing token"),
			)
		}

		signer := claims.Signer()
		if err := m.users.Sync(c.UserContext(), signer); err != nil {
			m.logger.Warn("Continuing without user mirror", zap.String("user_id", signer.UserID))
		}

		c.Locals(signerKey, signer)
		return c.Next()
	}
}

// Signer returns the authenticated caller set by the auth middleware
func Signer(c *fiber.Ctx) entity.Signer {
	signer, _ := c.Locals(signerKey).(entity.Signer)
	return signer
}
