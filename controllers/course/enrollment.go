package controllers

import (
	"github.com/gofiber/fiber/v2"

	"educa/middleware"
)

// Enroll adds the caller to the course's students. Repeating it is harmless.
func (h *Handler) Enroll(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	if err := h.gate.Enroll(c.UserContext(), userID, courseID); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled successfully.", fiber.Map{"enrolled": true})
}

// JoinedCourses lists the courses the caller is enrolled in.
func (h *Handler) JoinedCourses(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courses, err := h.gate.CoursesJoined(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

// CourseStudents lists the students of a course the caller teaches.
func (h *Handler) CourseStudents(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	found, err := h.courses.Course(c.UserContext(), courseID)
	if err != nil {
		return h.fail(c, err)
	}
	if found.OwnerID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Course owner only.", nil)
	}
	students, err := h.gate.Students(c.UserContext(), courseID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully.", students)
}
