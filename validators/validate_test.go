package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
}

func TestStructUsesJSONNames(t *testing.T) {
	errs := Struct(&signup{Username: "ab", Email: "nope"})
	assert.Equal(t, map[string]string{
		"username": "Must be at least 3 characters long!",
		"email":    "Invalid email!",
	}, errs)

	assert.Nil(t, Struct(&signup{Username: "ana", Email: "ana@example.com"}))
}

func TestBodyStoresValidatedRequest(t *testing.T) {
	app := fiber.New()
	app.Post("/", Body[signup]("req"), func(c *fiber.Ctx) error {
		return c.SendString(Validated[signup](c, "req").Username)
	})

	post := func(body string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, post(`{"username":"ana","email":"ana@example.com"}`))
	assert.Equal(t, fiber.StatusUnprocessableEntity, post(`{"username":"a"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(`{`))
}
