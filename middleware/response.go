package middleware

import (
	"github.com/gofiber/fiber/v2"

	"educa/apperr"
	"educa/logger"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse reports err with the status its apperr class maps to.
// Internal errors are logged and their text is not exposed.
func ErrorResponse(c *fiber.Ctx, log *logger.Logger, err error) error {
	ae := apperr.From(err)
	if ae.Status >= fiber.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return JsonResponse(c, ae.Status, false, "Something went wrong!", nil)
	}
	return JsonResponse(c, ae.Status, false, ae.Error(), fiber.Map{"code": ae.Code})
}
