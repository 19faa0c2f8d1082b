package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-suite/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Commerce       *handlers.CommerceHandler
	Library        *handlers.LibraryHandler
	Blog           *handlers.BlogHandler
	Movies         *handlers.MoviesHandler
	Students       *handlers.StudentsHandler
	Monitoring     *handlers.MonitoringHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Registration, login, public blog reads
// and agent metric submission stay open; everything else sits behind the
// bearer-token gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	gate := cfg.AuthMiddleware.Handle

	shop := app.Group("/shop", gate)
	shop.Post("/products", cfg.Commerce.CreateProduct)
	shop.Get("/products", cfg.Commerce.ListProducts)
	shop.Get("/products/:id", cfg.Commerce.GetProduct)
	shop.Get("/cart", cfg.Commerce.GetCart)
	shop.Post("/cart/items", cfg.Commerce.AddCartItem)
	shop.Delete("/cart/items/:id", cfg.Commerce.RemoveCartItem)
	shop.Post("/orders/checkout", cfg.Commerce.Checkout)
	shop.Get("/orders", cfg.Commerce.ListOrders)
	shop.Patch("/orders/:id/status", cfg.Commerce.UpdateOrderStatus)

	library := app.Group("/library", gate)
	library.Post("/books", cfg.Library.CreateBook)
	library.Get("/books", cfg.Library.ListBooks)
	library.Get("/books/:id", cfg.Library.GetBook)
	library.Delete("/books/:id", cfg.Library.DeleteBook)
	library.Post("/books/:id/rent", cfg.Library.RentBook)
	library.Post("/genres", cfg.Library.CreateGenre)
	library.Get("/genres", cfg.Library.ListGenres)
	library.Get("/rentals", cfg.Library.ListMyRentals)
	library.Post("/rentals/:id/return", cfg.Library.ReturnRental)

	blog := app.Group("/blog")
	blog.Get("/posts", cfg.Blog.ListPosts)
	blog.Get("/posts/:id", cfg.Blog.GetPost)
	blog.Get("/posts/:id/comments", cfg.Blog.ListComments)
	blog.Get("/tags", cfg.Blog.ListTags)
	blog.Post("/posts", gate, cfg.Blog.CreatePost)
	blog.Patch("/posts/:id", gate, cfg.Blog.UpdatePost)
	blog.Delete("/posts/:id", gate, cfg.Blog.DeletePost)
	blog.Post("/posts/:id/comments", gate, cfg.Blog.AddComment)
	blog.Post("/tags", gate, cfg.Blog.CreateTag)

	movies := app.Group("/movies", gate)
	movies.Post("/", cfg.Movies.CreateMovie)
	movies.Get("/", cfg.Movies.ListMovies)
	movies.Post("/genres", cfg.Movies.CreateGenre)
	movies.Get("/genres", cfg.Movies.ListGenres)
	movies.Get("/:id", cfg.Movies.GetMovie)
	movies.Patch("/:id", cfg.Movies.UpdateMovie)
	movies.Delete("/:id", cfg.Movies.DeleteMovie)
	movies.Post("/:id/rate", cfg.Movies.RateMovie)
	movies.Post("/:id/reviews", cfg.Movies.AddReview)
	movies.Get("/:id/reviews", cfg.Movies.ListReviews)

	students := app.Group("/students", gate)
	students.Post("/", cfg.Students.CreateStudent)
	students.Get("/", cfg.Students.ListStudents)
	students.Post("/courses", cfg.Students.CreateCourse)
	students.Get("/courses", cfg.Students.ListCourses)
	students.Delete("/courses/:id", cfg.Students.DeleteCourse)
	students.Get("/courses/:id/average", cfg.Students.CourseAverage)
	students.Post("/enrollments", cfg.Students.Enroll)
	students.Post("/:studentId/courses/:courseId/grades", cfg.Students.AddGrade)
	students.Get("/:studentId/courses/:courseId/average", cfg.Students.StudentCourseAverage)

	monitoring := app.Group("/monitoring")
	// agents report readings by IP without credentials
	monitoring.Post("/metrics/:ip", cfg.Monitoring.SubmitMetrics)
	monitoring.Get("/metrics/:ip/latest", gate, cfg.Monitoring.LatestMetrics)
	monitoring.Post("/servers", gate, cfg.Monitoring.CreateServer)
	monitoring.Get("/servers", gate, cfg.Monitoring.ListServers)
	monitoring.Delete("/servers/:id", gate, cfg.Monitoring.DeleteServer)
	monitoring.Post("/servers/:id/alert-rules", gate, cfg.Monitoring.UpsertAlertRule)
	monitoring.Get("/alerts", gate, cfg.Monitoring.ListAlerts)

	tasks := app.Group("/tasks", gate)
	tasks.Post("/", cfg.Tasks.CreateTask)
	tasks.Get("/", cfg.Tasks.ListTasks)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Patch("/:id", cfg.Tasks.UpdateTask)
	tasks.Delete("/:id", cfg.Tasks.DeleteTask)
}
