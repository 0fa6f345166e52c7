package courseRoutes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controllers "educa/controllers/course"
	"educa/logger"
	"educa/middleware"
	validators "educa/validators/course"
)

// SetupAPIRoutes sets up the public REST API.
func SetupAPIRoutes(app *fiber.App, db *gorm.DB, h *controllers.Handler, log *logger.Logger) {
	api := app.Group("/api")

	api.Get("/subjects", h.Subjects)
	api.Get("/subjects/:id<int>", h.Subject)
	api.Get("/courses", validators.CourseList(), h.Courses)
	api.Get("/courses/:id<int>", h.Course)

	api.Post("/courses/:id<int>/enroll", middleware.Authenticate(db), h.Enroll)
	api.Get("/courses/:id<int>/contents",
		middleware.Authenticate(db),
		middleware.RequireEnrollment(h.Gate(), "id", log),
		h.CourseContents,
	)
}
