package serverutils

import (
	"errors"

	"docuchat-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts typed domain errors into the JSON error
// envelope. Untyped errors become opaque 500s so internals never leak.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		kind := apperror.KindOf(err)
		status := statusFor(kind)

		message := err.Error()
		if kind == apperror.KindInternal {
			message = "internal server error"
		}

		return ctx.Status(status).JSON(ErrorBody{
			Success:   false,
			Message:   message,
			ErrorType: string(kind),
		})
	}
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	case apperror.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
