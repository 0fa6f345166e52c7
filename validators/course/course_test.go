package courseValidator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRejectsIdsThatDoNotFit(t *testing.T) {
	app := fiber.New()
	app.Post("/", Order(), func(c *fiber.Ctx) error {
		reqData, _ := c.Locals(OrderKey).(OrderRequest)
		return c.JSON(reqData)
	})

	cases := map[string]int{
		`{"1": 0, "2": 1}`:                        fiber.StatusOK,
		`{}`:                                      fiber.StatusUnprocessableEntity,
		`{"0": 1}`:                                fiber.StatusUnprocessableEntity,
		`{"abc": 1}`:                              fiber.StatusUnprocessableEntity,
		`{"1": -1}`:                               fiber.StatusUnprocessableEntity,
		`{"1": 7, "99999999999999999999999": 1}`: fiber.StatusUnprocessableEntity,
	}
	for body, want := range cases {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, body)
	}
}
