package routes

import (
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"onlinecourse/backend/config"
	"onlinecourse/backend/controllers"
	_ "onlinecourse/backend/docs"
	"onlinecourse/backend/middleware"
	"onlinecourse/backend/store"
)

func SetupRoutes(app *fiber.App, s *store.Store, cfg *config.Config, log *zap.SugaredLogger) {
	// Swagger
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Auth routes
	authController := controllers.NewAuthController(s, cfg, log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(s)

	// User routes
	userController := controllers.NewUserController(s, cfg, log)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/learner", authMiddleware, userController.UpdateLearner)
	app.Get("/api/user/enrollments", authMiddleware, userController.GetEnrollments)

	// Courses routes
	coursesController := controllers.NewCoursesController(s, cfg, log)
	examController := controllers.NewExamController(s, cfg, log)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/slug/:slug", coursesController.GetCourseBySlug)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Post("/:id/enroll", authMiddleware, coursesController.Enroll)
	courses.Delete("/:id/enroll", authMiddleware, coursesController.Unenroll)
	courses.Put("/:id/rating", authMiddleware, coursesController.RateCourse)
	courses.Get("/:id/exam", authMiddleware, examController.GetExam)
	courses.Post("/:id/submissions", authMiddleware, examController.SubmitExam)

	// Exam routes
	app.Get("/api/submissions/:id", authMiddleware, examController.GetSubmissionResult)
	app.Post("/api/questions/:id/classify", authMiddleware, examController.ClassifyQuestion)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(s, cfg, log)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Delete("/courses/:id", coursesController.DeleteCourse)
	admin.Post("/courses/:id/lessons", coursesController.AddLesson)
	admin.Put("/courses/:id/lessons/:lessonId", coursesController.UpdateLesson)
	admin.Delete("/courses/:id/lessons/:lessonId", coursesController.DeleteLesson)
	admin.Post("/courses/:id/questions", examController.AddQuestion)
	admin.Delete("/questions/:id", examController.DeleteQuestion)
	admin.Post("/courses/:id/instructors", coursesController.AddInstructor)
	admin.Post("/instructors", coursesController.CreateInstructor)
	admin.Get("/courses/:id/analytics", analyticsController.GetCourseAnalytics)
}
