package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"educa/apperr"
	"educa/logger"
	"educa/middleware"
	"educa/services/content"
	"educa/services/course"
	"educa/services/enrollment"
)

// Handler serves the course management routes and the public course API.
type Handler struct {
	courses  *course.Service
	contents *content.Service
	gate     *enrollment.Gate
	log      *logger.Logger
}

func NewHandler(courses *course.Service, contents *content.Service, gate *enrollment.Gate, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{courses: courses, contents: contents, gate: gate, log: log.With("controller", "Course")}
}

// Gate exposes the enrollment gate for route-level middleware.
func (h *Handler) Gate() *enrollment.Gate { return h.gate }

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	return middleware.ErrorResponse(c, h.log, err)
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badID(c *fiber.Ctx, what string) error {
	return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+what+" id!", nil)
}

func unauthorized(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
}

// positions converts a validated {"id": order} body. Any id that does not
// parse fails the whole batch.
func positions(raw map[string]int) (map[uint]int, error) {
	out := make(map[uint]int, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, strconv.IntSize)
		if err != nil || id == 0 {
			return nil, apperr.Invalid(k, "id must be a positive integer")
		}
		out[uint(id)] = v
	}
	return out, nil
}
