package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educa/apperr"
	"educa/config"
	"educa/testutil"
)

func init() {
	config.AppConfig = &config.Config{JWTKey: "test-secret"}
}

func whoami(c *fiber.Ctx) error {
	id, _ := UserID(c)
	return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"id": id, "username": c.Locals("username")})
}

type envelope struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func call(t *testing.T, app *fiber.App, path, auth string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateJWT(7, "ana")
	require.NoError(t, err)
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ana", claims.Username)

	_, err = ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "ana")
	app := fiber.New()
	app.Get("/me", Authenticate(db), whoami)

	status, _ := call(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "/me", "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	token, err := GenerateJWT(user.ID, user.Username)
	require.NoError(t, err)
	status, env := call(t, app, "/me", "Bearer "+token)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, user.ID, env.Data["id"])

	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte("ana:"+testutil.Password))
	status, env = call(t, app, "/me", basic)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ana", env.Data["username"])

	wrong := "Basic " + base64.StdEncoding.EncodeToString([]byte("ana:nope"))
	status, _ = call(t, app, "/me", wrong)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

type gateFunc func(userID, courseID uint) error

func (f gateFunc) Require(_ context.Context, userID, courseID uint) error { return f(userID, courseID) }

func TestRequireEnrollment(t *testing.T) {
	gate := gateFunc(func(userID, courseID uint) error {
		if userID == 1 && courseID == 10 {
			return nil
		}
		return apperr.Forbidden("not enrolled in course")
	})
	app := fiber.New()
	app.Get("/courses/:id", func(c *fiber.Ctx) error {
		c.Locals("userId", uint(1))
		return c.Next()
	}, RequireEnrollment(gate, "id", nil), whoami)

	status, _ := call(t, app, "/courses/10", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, env := call(t, app, "/courses/11", "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.False(t, env.Status)
	assert.Equal(t, "forbidden", env.Data["code"])

	status, _ = call(t, app, "/courses/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestErrorResponseHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return ErrorResponse(c, nil, errors.New("db password leaked"))
	})
	status, env := call(t, app, "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Something went wrong!", env.Message)
}
