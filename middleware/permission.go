package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"educa/logger"
)

// EnrollmentChecker is satisfied by the enrollment gate.
type EnrollmentChecker interface {
	Require(ctx context.Context, userID, courseID uint) error
}

// RequireEnrollment returns a middleware that lets the request through only
// when the caller is a student of the course named by the route param.
func RequireEnrollment(gate EnrollmentChecker, param string, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		courseID, err := c.ParamsInt(param)
		if err != nil || courseID <= 0 {
			return JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
		}
		if err := gate.Require(c.UserContext(), userID, uint(courseID)); err != nil {
			return ErrorResponse(c, log, err)
		}
		return c.Next()
	}
}
