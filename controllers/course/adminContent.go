package controllers

import (
	"github.com/gofiber/fiber/v2"

	"educa/middleware"
	"educa/services/content"
	"educa/validators"
	courseValidator "educa/validators/course"
)

// SaveContent creates an item of the route's :kind in the module, or updates
// the item behind :content_id when present. Image and file uploads come in
// the multipart "file" field.
func (h *Handler) SaveContent(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	moduleID, ok := paramID(c, "module_id")
	if !ok {
		return badID(c, "module")
	}
	req := content.SaveRequest{ModuleID: moduleID, Kind: c.Params("kind"), Actor: userID}
	if c.Params("content_id") != "" {
		contentID, ok := paramID(c, "content_id")
		if !ok {
			return badID(c, "content")
		}
		req.ContentID = &contentID
	}

	reqData := validators.Validated[courseValidator.ContentRequest](c, courseValidator.ContentKey)
	req.Fields = content.Fields{Title: reqData.Title, Content: reqData.Content, URL: reqData.URL}

	// a missing or non-multipart file field just means no upload
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unable to read uploaded file!", nil)
		}
		defer f.Close()
		req.Fields.Upload = &content.Upload{Filename: fh.Filename, Body: f}
	}

	saved, err := h.contents.Save(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	status, msg := fiber.StatusCreated, "Content created successfully!"
	if req.ContentID != nil {
		status, msg = fiber.StatusOK, "Content updated successfully!"
	}
	return middleware.JsonResponse(c, status, true, msg, fiber.Map{
		"content": saved.Content,
		"item":    saved.Item,
	})
}

// DeleteContent removes the association. The item itself is kept.
func (h *Handler) DeleteContent(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	contentID, ok := paramID(c, "content_id")
	if !ok {
		return badID(c, "content")
	}
	if err := h.contents.Delete(c.UserContext(), contentID, userID); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}

// ListContent returns the module's rendered contents in order. Only the
// course owner may read them here; students use the enrollment-guarded API.
func (h *Handler) ListContent(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	moduleID, ok := paramID(c, "module_id")
	if !ok {
		return badID(c, "module")
	}
	entries, err := h.contents.List(c.UserContext(), moduleID, userID)
	if err != nil {
		return h.fail(c, err)
	}
	if entries == nil {
		entries = []content.Entry{}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contents fetched successfully.", entries)
}

// OrderContent applies a {"content_id": order} batch.
func (h *Handler) OrderContent(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	moduleID, ok := paramID(c, "module_id")
	if !ok {
		return badID(c, "module")
	}
	reqData, _ := c.Locals(courseValidator.OrderKey).(courseValidator.OrderRequest)
	order, err := positions(reqData)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.contents.Reorder(c.UserContext(), moduleID, order, userID); err != nil {
		return h.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contents reordered.", fiber.Map{"saved": "OK"})
}
