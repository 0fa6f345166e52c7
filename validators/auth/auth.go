package authValidator

import (
	"github.com/gofiber/fiber/v2"

	"educa/validators"
)

const ValidatedKey = "validatedUser"

type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=150,alphanum"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Signup validator middleware
func Signup() fiber.Handler { return validators.Body[SignupRequest](ValidatedKey) }

// Login validator middleware
func Login() fiber.Handler { return validators.Body[LoginRequest](ValidatedKey) }
