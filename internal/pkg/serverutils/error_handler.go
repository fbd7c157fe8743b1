package serverutils

import (
	"errors"

	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/pkg/embedding"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler translates service errors to HTTP responses. Persistence
// errors surface as 500 with a generic message; the detail goes to the log.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var appErr *AppError
		if errors.As(err, &appErr) {
			switch appErr.Kind {
			case KindValidation:
				return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(appErr.Message))
			case KindNotFound:
				return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(appErr.Message))
			case KindProvider:
				log.Warn("http", "embedding provider error", map[string]interface{}{"error": appErr.Error()})
				return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(appErr.Message))
			case KindPersistence:
				log.Error("http", "persistence error", map[string]interface{}{"error": appErr.Error()})
				return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
			}
		}

		if errors.Is(err, embedding.ErrProviderUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("Embedding provider unavailable"))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{"error": err.Error()})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
