package controllers

import (
	"github.com/gofiber/fiber/v2"

	"educa/middleware"
	"educa/validators"
	courseValidator "educa/validators/course"
)

// Subjects lists subjects with their course counts.
func (h *Handler) Subjects(c *fiber.Ctx) error {
	subjects, err := h.courses.Subjects(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subjects fetched successfully.", subjects)
}

func (h *Handler) Subject(c *fiber.Ctx) error {
	subjectID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "subject")
	}
	subject, err := h.courses.Subject(c.UserContext(), subjectID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subject fetched successfully.", subject)
}

// Courses lists courses newest first, optionally filtered by ?subject=<slug>.
func (h *Handler) Courses(c *fiber.Ctx) error {
	filter := validators.Validated[courseValidator.CourseFilter](c, courseValidator.FilterKey)
	courses, err := h.courses.Courses(c.UserContext(), filter.Subject)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

// Course returns one course with its ordered modules.
func (h *Handler) Course(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	found, err := h.courses.Course(c.UserContext(), courseID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", found)
}

// CourseContents returns the course with every module's rendered contents.
// The route is guarded by RequireEnrollment.
func (h *Handler) CourseContents(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	detail, err := h.courses.WithContents(c.UserContext(), courseID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course contents fetched successfully.", detail)
}
