package courseRoutes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controllers "educa/controllers/course"
	"educa/middleware"
	validators "educa/validators/course"
)

// SetupManageRoutes sets up the instructor routes for courses, modules and
// contents.
func SetupManageRoutes(app *fiber.App, db *gorm.DB, h *controllers.Handler) {
	manage := app.Group("/course", middleware.Authenticate(db))

	manage.Post("/subjects", validators.CreateSubject(), h.CreateSubject)
	manage.Post("/create", validators.CreateCourse(), h.CreateCourse)
	manage.Get("/mine", h.MyCourses)
	manage.Put("/:id<int>", validators.UpdateCourse(), h.UpdateCourse)
	manage.Delete("/:id<int>", h.DeleteCourse)
	manage.Get("/:id<int>/students", h.CourseStudents)

	// Modules
	manage.Get("/:id<int>/modules", h.ListModules)
	manage.Post("/:id<int>/module", validators.CreateModule(), h.CreateModule)
	manage.Post("/:id<int>/module/order", validators.Order(), h.OrderModules)
	manage.Put("/module/:module_id<int>", validators.UpdateModule(), h.UpdateModule)
	manage.Delete("/module/:module_id<int>", h.DeleteModule)

	// Contents
	manage.Get("/module/:module_id<int>/content", h.ListContent)
	manage.Post("/module/:module_id<int>/content/order", validators.Order(), h.OrderContent)
	manage.Post("/module/:module_id<int>/content/:kind", validators.SaveContent(), h.SaveContent)
	manage.Put("/module/:module_id<int>/content/:kind/:content_id<int>", validators.SaveContent(), h.SaveContent)
	manage.Delete("/content/:content_id<int>", h.DeleteContent)

	students := app.Group("/students", middleware.Authenticate(db))
	students.Get("/courses", h.JoinedCourses)
}
