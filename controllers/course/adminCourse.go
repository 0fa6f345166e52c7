package controllers

import (
	"github.com/gofiber/fiber/v2"

	"educa/middleware"
	"educa/services/course"
	"educa/validators"
	courseValidator "educa/validators/course"
)

// CreateSubject adds a subject.
func (h *Handler) CreateSubject(c *fiber.Ctx) error {
	reqData := validators.Validated[courseValidator.SubjectRequest](c, courseValidator.SubjectKey)
	subject, err := h.courses.CreateSubject(c.UserContext(), reqData.Title, reqData.Slug)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subject created successfully!", subject)
}

// CreateCourse creates a course owned by the caller.
func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	reqData := validators.Validated[courseValidator.CourseRequest](c, courseValidator.CourseKey)
	created, err := h.courses.CreateCourse(c.UserContext(), userID, course.CourseInput{
		SubjectID: reqData.SubjectID,
		Title:     reqData.Title,
		Slug:      reqData.Slug,
		Overview:  reqData.Overview,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", created)
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	reqData := validators.Validated[courseValidator.CourseUpdateRequest](c, courseValidator.CourseKey)
	updated, err := h.courses.UpdateCourse(c.UserContext(), courseID, userID, course.CourseInput{
		SubjectID: reqData.SubjectID,
		Title:     reqData.Title,
		Slug:      reqData.Slug,
		Overview:  reqData.Overview,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", updated)
}

func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	if err := h.courses.DeleteCourse(c.UserContext(), courseID, userID); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// MyCourses lists the courses the caller teaches.
func (h *Handler) MyCourses(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courses, err := h.courses.OwnedCourses(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}
