package courseValidator

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"educa/middleware"
	courseModels "educa/models/course"
	"educa/validators"
)

const (
	SubjectKey = "validatedSubject"
	CourseKey  = "validatedCourse"
	ModuleKey  = "validatedModule"
	ContentKey = "validatedContent"
	OrderKey   = "validatedOrder"
	FilterKey  = "validatedFilter"
)

type SubjectRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=200"`
	Slug  string `json:"slug" form:"slug" validate:"omitempty,max=200"`
}

type CourseRequest struct {
	SubjectID uint   `json:"subject" form:"subject" validate:"required,gt=0"`
	Title     string `json:"title" form:"title" validate:"required,min=3,max=200"`
	Slug      string `json:"slug" form:"slug" validate:"omitempty,max=200"`
	Overview  string `json:"overview" form:"overview" validate:"max=10000"`
}

// CourseUpdateRequest accepts partial updates.
type CourseUpdateRequest struct {
	SubjectID uint   `json:"subject" form:"subject"`
	Title     string `json:"title" form:"title" validate:"omitempty,min=3,max=200"`
	Slug      string `json:"slug" form:"slug" validate:"omitempty,max=200"`
	Overview  string `json:"overview" form:"overview" validate:"max=10000"`
}

type ModuleRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"max=10000"`
}

type ModuleUpdateRequest struct {
	Title       string `json:"title" form:"title" validate:"max=200"`
	Description string `json:"description" form:"description" validate:"max=10000"`
}

// ContentRequest holds the text fields of a content form. Uploads are read
// from the multipart "file" field by the handler.
type ContentRequest struct {
	Title   string `json:"title" form:"title" validate:"max=250"`
	Content string `json:"content" form:"content"`
	URL     string `json:"url" form:"url" validate:"omitempty,url"`
}

// OrderRequest maps id → order, e.g. {"12": 0, "9": 1}.
type OrderRequest map[string]int

type CourseFilter struct {
	Subject string `query:"subject" validate:"max=200"`
}

func CreateSubject() fiber.Handler { return validators.Body[SubjectRequest](SubjectKey) }

func CreateCourse() fiber.Handler { return validators.Body[CourseRequest](CourseKey) }

func UpdateCourse() fiber.Handler { return validators.Body[CourseUpdateRequest](CourseKey) }

func CreateModule() fiber.Handler { return validators.Body[ModuleRequest](ModuleKey) }

func UpdateModule() fiber.Handler { return validators.Body[ModuleUpdateRequest](ModuleKey) }

func CourseList() fiber.Handler { return validators.Query[CourseFilter](FilterKey) }

// SaveContent checks the :kind route param before the body is read, so an
// unsupported kind is rejected without touching storage.
func SaveContent() fiber.Handler {
	parse := validators.Body[ContentRequest](ContentKey)
	return func(c *fiber.Ctx) error {
		if _, err := courseModels.ParseKind(c.Params("kind")); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unsupported content type!", fiber.Map{"code": "invalid_content_type"})
		}
		return parse(c)
	}
}

// Order validator middleware
func Order() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := OrderRequest{}
		if err := c.BodyParser(&reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(reqData) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"order": "At least one id is required!"})
		}
		errors := make(map[string]string)
		for id, pos := range reqData {
			if n, err := strconv.ParseUint(id, 10, strconv.IntSize); err != nil || n == 0 {
				errors[id] = "Id must be a positive integer!"
			}
			if pos < 0 {
				errors[id] = "Order must not be negative!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(OrderKey, reqData)
		return c.Next()
	}
}
