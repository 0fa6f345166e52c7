package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authControllers "educa/controllers/auth"
	authValidators "educa/validators/auth"
)

func SetupAuthRoutes(app *fiber.App, auth *authControllers.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), auth.Signup)
	authGroup.Post("/login", authValidators.Login(), auth.Login)
}
