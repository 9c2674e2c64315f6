package http

import (
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	GroupUC      *usecase.GroupUseCase
	CompanyUC    *usecase.CompanyUseCase
	MembershipUC *usecase.MembershipUseCase
	ModuleSvc    *usecase.ModuleService
	ActivityUC   *usecase.ActivityUseCase
	CategoryUC   *usecase.CategoryUseCase
	ProductUC    *usecase.ProductUseCase

	Users     repository.UserRepository
	Tenants   *authz.TenantResolver
	Checker   authz.Checker
	JWTSecret string
}

// AppConfig opciones de la aplicación Fiber.
type AppConfig struct {
	Name        string
	Log         *logger.Logger
	Registry    *prometheus.Registry // nil: sin /metrics
	SwaggerFile string               // vacío: sin /docs
}

// NewApp crea la aplicación con ErrorHandler, recover, access log, métricas, /health y las rutas de la API.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: ErrorHandler(cfg.Log),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(AccessLog(cfg.Log))
	if cfg.Registry != nil {
		app.Use(Metrics(cfg.Registry))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    "Gestion API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Cadena común de rutas protegidas: JWT + empresa seleccionada.
	protected := []fiber.Handler{
		AuthMiddleware(deps.JWTSecret, deps.Users),
		TenantMiddleware(deps.Tenants),
	}
	// Catálogo: acceso a la empresa + módulo inventory + empresa concreta.
	catalog := append(append([]fiber.Handler{}, protected...),
		RequireTenantAccess(deps.Checker),
		RequireModule(entity.ModuleInventory, deps.Checker),
		requireTenant,
	)
	with := func(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, mw...), h)
	}

	// Auth (público salvo logout)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/verify", authHandler.Verify)
	authGroup.Post("/logout", with(protected, authHandler.Logout)...)

	// Users: las rutas fijas van antes de /:id.
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users", protected...)
	users.Get("/me", userHandler.Me)
	users.Put("/me", userHandler.UpdateMe)
	users.Post("/change-password", authHandler.ChangePassword)
	users.Get("/manage", userHandler.Manage)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id/companies", userHandler.Companies)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Groups
	groupHandler := NewGroupHandler(deps.GroupUC)
	groups := api.Group("/groups", protected...)
	groups.Get("/", groupHandler.List)
	groups.Post("/", groupHandler.Create)
	groups.Put("/:id", groupHandler.Update)
	groups.Delete("/:id", groupHandler.Delete)

	// Companies, miembros y módulos
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.MembershipUC, deps.ModuleSvc)
	companies := api.Group("/companies", protected...)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id/users", companyHandler.Members)
	companies.Post("/:id/users", companyHandler.AddMember)
	companies.Put("/:id/users/:membershipId", companyHandler.UpdateMember)
	companies.Get("/:id/modules", companyHandler.Modules)
	companies.Post("/:id/modules", companyHandler.AddModule)
	companies.Put("/:id/modules/:moduleId", companyHandler.UpdateModule)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)

	// Activity log
	activityHandler := NewActivityHandler(deps.ActivityUC)
	activity := api.Group("/activity-logs", protected...)
	activity.Get("/", activityHandler.List)
	activity.Post("/", activityHandler.Create)

	// Categorías y productos (módulo inventory)
	productHandler := NewProductHandler(deps.CategoryUC, deps.ProductUC)
	categories := api.Group("/categories", catalog...)
	categories.Get("/", productHandler.ListCategories)
	categories.Post("/", productHandler.CreateCategory)
	categories.Get("/:id", productHandler.GetCategory)
	categories.Put("/:id", productHandler.UpdateCategory)
	categories.Delete("/:id", productHandler.DeleteCategory)

	products := api.Group("/products", catalog...)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
}
