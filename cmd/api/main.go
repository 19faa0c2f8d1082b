package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/backoffice-suite/internal/api/http"
	"github.com/spec-kit/backoffice-suite/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/config"
	"github.com/spec-kit/backoffice-suite/internal/events"
	"github.com/spec-kit/backoffice-suite/internal/observability"
	"github.com/spec-kit/backoffice-suite/internal/persistence"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	"github.com/spec-kit/backoffice-suite/internal/service"
	"github.com/spec-kit/backoffice-suite/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	tokenStore := auth.NewTokenStore(tokenRepo)

	authService := service.NewAuthService(userRepo, tokenStore, cfg.Auth.BcryptCost)
	authMiddleware := auth.NewAuthMiddleware(tokenStore)

	commerceService := service.NewCommerceService(service.CommerceDependencies{
		ProductRepo: repository.NewProductRepository(pool),
		CartRepo:    repository.NewCartRepository(pool),
		OrderRepo:   repository.NewOrderRepository(pool),
		Dispatcher:  dispatcher,
	})
	libraryService := service.NewLibraryService(service.LibraryDependencies{
		BookRepo:   repository.NewBookRepository(pool),
		GenreRepo:  repository.NewBookGenreRepository(pool),
		RentalRepo: repository.NewRentalRepository(pool),
	})
	blogService := service.NewBlogService(service.BlogDependencies{
		PostRepo:    repository.NewPostRepository(pool),
		TagRepo:     repository.NewTagRepository(pool),
		CommentRepo: repository.NewCommentRepository(pool),
	})
	moviesService := service.NewMoviesService(service.MoviesDependencies{
		MovieRepo:  repository.NewMovieRepository(pool),
		GenreRepo:  repository.NewMovieGenreRepository(pool),
		RatingRepo: repository.NewRatingRepository(pool),
		ReviewRepo: repository.NewReviewRepository(pool),
	})
	studentsService := service.NewStudentsService(service.StudentsDependencies{
		StudentRepo:    repository.NewStudentRepository(pool),
		CourseRepo:     repository.NewCourseRepository(pool),
		EnrollmentRepo: repository.NewEnrollmentRepository(pool),
		GradeRepo:      repository.NewGradeRepository(pool),
	})
	monitoringService := service.NewMonitoringService(service.MonitoringDependencies{
		ServerRepo:   repository.NewServerRepository(pool),
		RuleRepo:     repository.NewAlertRuleRepository(pool),
		MetricRepo:   repository.NewMetricRepository(pool),
		AlertLogRepo: repository.NewAlertLogRepository(pool),
		Dispatcher:   dispatcher,
	})
	tasksService := service.NewTasksService(repository.NewTaskRepository(pool))

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Commerce:       handlers.NewCommerceHandler(commerceService),
		Library:        handlers.NewLibraryHandler(libraryService),
		Blog:           handlers.NewBlogHandler(blogService),
		Movies:         handlers.NewMoviesHandler(moviesService),
		Students:       handlers.NewStudentsHandler(studentsService),
		Monitoring:     handlers.NewMonitoringHandler(monitoringService),
		Tasks:          handlers.NewTasksHandler(tasksService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
