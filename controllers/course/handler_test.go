package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educa/config"
	controllers "educa/controllers/course"
	"educa/middleware"
	"educa/notify"
	"educa/oembed"
	"educa/ordering"
	"educa/routers/courseRoutes"
	"educa/services/content"
	"educa/services/course"
	"educa/services/enrollment"
	"educa/storage"
	"educa/testutil"
)

func init() {
	config.AppConfig = &config.Config{JWTKey: "handler-test-secret"}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c client) do(method, path, contentType string, body io.Reader) (int, envelope) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (c client) json(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	return c.do(method, path, fiber.MIMEApplicationJSON, r)
}

func (c client) upload(path, title, filename string, data []byte) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(c.t, w.WriteField("title", title))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())
	return c.do(fiber.MethodPost, path, w.FormDataContentType(), &buf)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func tokenFor(t *testing.T, id uint, username string) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(id, username)
	require.NoError(t, err)
	return tok
}

var pngHead = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestCourseLifecycleOverHTTP(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	orders := ordering.NewAssigner(log)
	contents := content.NewService(db, orders, storage.NewLocal(t.TempDir(), "/media/", log), oembed.Nop{}, log)
	courses := course.NewService(db, orders, contents, log)
	gate := enrollment.NewGate(db, notify.Log{}, log)
	h := controllers.NewHandler(courses, contents, gate, log)

	app := fiber.New()
	courseRoutes.SetupManageRoutes(app, db, h)
	courseRoutes.SetupAPIRoutes(app, db, h, log)

	owner := testutil.SeedUser(t, db, "owner")
	student := testutil.SeedUser(t, db, "student")
	stranger := testutil.SeedUser(t, db, "stranger")
	subject := testutil.SeedSubject(t, db, "Programming")

	teacher := client{t: t, app: app, token: tokenFor(t, owner.ID, owner.Username)}
	learner := client{t: t, app: app, token: tokenFor(t, student.ID, student.Username)}
	outsider := client{t: t, app: app, token: tokenFor(t, stranger.ID, stranger.Username)}
	anonymous := client{t: t, app: app}

	status, env := teacher.json(fiber.MethodPost, "/course/create", map[string]any{"subject": subject.ID, "title": "Go Basics", "overview": "learn go"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	courseID := decode[struct{ ID uint }](t, env).ID

	status, _ = teacher.json(fiber.MethodPost, "/course/create", map[string]any{"title": "x"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = teacher.json(fiber.MethodPost, fmt.Sprintf("/course/%d/module", courseID), map[string]any{"title": "Intro"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	moduleID := decode[struct{ ID uint }](t, env).ID

	contentPath := fmt.Sprintf("/course/module/%d/content/", moduleID)
	type saved struct {
		Content struct {
			ID    uint
			Order int `json:"order"`
		} `json:"content"`
	}
	var ids []uint
	for i, title := range []string{"first", "second"} {
		status, env = teacher.json(fiber.MethodPost, contentPath+"text", map[string]any{"title": title, "content": "body"})
		require.Equal(t, fiber.StatusCreated, status, env.Message)
		s := decode[saved](t, env)
		assert.Equal(t, i, s.Content.Order)
		ids = append(ids, s.Content.ID)
	}

	status, env = teacher.upload(contentPath+"image", "Diagram", "diagram.png", pngHead)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.Equal(t, 2, decode[saved](t, env).Content.Order)

	status, env = teacher.json(fiber.MethodPost, contentPath+"quiz", map[string]any{"title": "Q"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(env.Data), "invalid_content_type")

	status, _ = outsider.json(fiber.MethodPost, contentPath+"text", map[string]any{"title": "spam", "content": "x"})
	assert.Equal(t, fiber.StatusForbidden, status)

	order := map[string]int{fmt.Sprint(ids[0]): 1, fmt.Sprint(ids[1]): 0}
	status, _ = teacher.json(fiber.MethodPost, contentPath+"order", order)
	require.Equal(t, fiber.StatusOK, status)

	status, env = teacher.json(fiber.MethodGet, contentPath, nil)
	require.Equal(t, fiber.StatusOK, status)
	listed := decode[[]content.Entry](t, env)
	require.Len(t, listed, 3)
	assert.Equal(t, "second", listed[0].Title)
	assert.Equal(t, "first", listed[1].Title)
	assert.True(t, strings.HasPrefix(listed[2].HTML, `<div class="content-image">`))

	status, _ = outsider.json(fiber.MethodGet, contentPath, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = learner.json(fiber.MethodGet, contentPath, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	overflow := map[string]int{fmt.Sprint(ids[0]): 7, "99999999999999999999999": 1}
	status, _ = teacher.json(fiber.MethodPost, contentPath+"order", overflow)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	status, env = teacher.json(fiber.MethodGet, contentPath, nil)
	require.Equal(t, fiber.StatusOK, status)
	unchanged := decode[[]content.Entry](t, env)
	require.Len(t, unchanged, 3)
	assert.Equal(t, 1, unchanged[1].Order)
	assert.Equal(t, "first", unchanged[1].Title)

	contentsPath := fmt.Sprintf("/api/courses/%d/contents", courseID)
	status, _ = anonymous.json(fiber.MethodGet, contentsPath, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = learner.json(fiber.MethodGet, contentsPath, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	for i := 0; i < 2; i++ {
		status, env = learner.json(fiber.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", courseID), nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)
		assert.JSONEq(t, `{"enrolled":true}`, string(env.Data))
	}

	status, env = learner.json(fiber.MethodGet, contentsPath, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	detail := decode[course.CourseDetail](t, env)
	require.Len(t, detail.Modules, 1)
	require.Len(t, detail.Modules[0].Contents, 3)
	assert.Equal(t, "second", detail.Modules[0].Contents[0].Title)

	status, env = learner.json(fiber.MethodGet, "/students/courses", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]struct{ ID uint }](t, env), 1)

	status, _ = learner.json(fiber.MethodPost, "/api/courses/9999/enroll", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = anonymous.json(fiber.MethodGet, "/api/subjects", nil)
	require.Equal(t, fiber.StatusOK, status)
	subjects := decode[[]course.SubjectSummary](t, env)
	require.Len(t, subjects, 1)
	assert.Equal(t, int64(1), subjects[0].TotalCourses)

	status, env = anonymous.json(fiber.MethodGet, "/api/courses?subject=programming", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]struct{ ID uint }](t, env), 1)

	status, _ = outsider.json(fiber.MethodDelete, fmt.Sprintf("/course/%d", courseID), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = teacher.json(fiber.MethodDelete, fmt.Sprintf("/course/%d", courseID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = anonymous.json(fiber.MethodGet, fmt.Sprintf("/api/courses/%d", courseID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
