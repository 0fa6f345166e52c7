package controllers

import (
	"github.com/gofiber/fiber/v2"

	"educa/middleware"
	"educa/services/course"
	"educa/validators"
	courseValidator "educa/validators/course"
)

// CreateModule appends a module to the course.
func (h *Handler) CreateModule(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	reqData := validators.Validated[courseValidator.ModuleRequest](c, courseValidator.ModuleKey)
	module, err := h.courses.CreateModule(c.UserContext(), courseID, userID, course.ModuleInput{
		Title:       reqData.Title,
		Description: reqData.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// UpdateModule edits a module's title and description.
func (h *Handler) UpdateModule(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	moduleID, ok := paramID(c, "module_id")
	if !ok {
		return badID(c, "module")
	}
	reqData := validators.Validated[courseValidator.ModuleUpdateRequest](c, courseValidator.ModuleKey)
	module, err := h.courses.UpdateModule(c.UserContext(), moduleID, userID, course.ModuleInput{
		Title:       reqData.Title,
		Description: reqData.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

func (h *Handler) DeleteModule(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	moduleID, ok := paramID(c, "module_id")
	if !ok {
		return badID(c, "module")
	}
	if err := h.courses.DeleteModule(c.UserContext(), moduleID, userID); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// ListModules returns the course's modules in order.
func (h *Handler) ListModules(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	modules, err := h.courses.Modules(c.UserContext(), courseID)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully.", modules)
}

// OrderModules applies a {"module_id": order} batch.
func (h *Handler) OrderModules(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return badID(c, "course")
	}
	reqData, _ := c.Locals(courseValidator.OrderKey).(courseValidator.OrderRequest)
	order, err := positions(reqData)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.courses.ReorderModules(c.UserContext(), courseID, userID, order); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules reordered.", fiber.Map{"saved": "OK"})
}
