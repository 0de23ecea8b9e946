package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	nats "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api/handler"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api/middleware"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/dashboard"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Backend   ports.AuthBackend
	Products  ports.ProductService
	Sales     ports.SaleService
	Insights  ports.InsightService
	Admin     ports.AdminService
	Hub       *dashboard.Hub
	Mongo     *mongo.Database
	Redis     *redis.Client
	NATS      *nats.Conn
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("umkm"))

	authMiddleware := middleware.Auth(d.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Backend)
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/signout", authHandler.SignOut, authMiddleware)
	e.GET("/auth/session", authHandler.Session, authMiddleware)

	// --- Profile ---
	profileHandler := handler.NewProfileHandler(d.Backend)
	e.GET("/v1/profile", profileHandler.Get, authMiddleware)
	e.PATCH("/v1/profile", profileHandler.Update, authMiddleware)

	// --- Products ---
	productHandler := handler.NewProductHandler(d.Products)
	products := e.Group("/v1/products", authMiddleware)
	products.POST("", productHandler.Create)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.PATCH("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)

	// --- Sales ---
	saleHandler := handler.NewSaleHandler(d.Sales)
	sales := e.Group("/v1/sales", authMiddleware)
	sales.POST("", saleHandler.Record)
	sales.GET("", saleHandler.List)

	// --- Dashboard ---
	dashboardHandler := handler.NewDashboardHandler(d.Hub, d.Insights)
	e.GET("/v1/dashboard", dashboardHandler.Summary, authMiddleware)
	e.POST("/v1/dashboard/insight", dashboardHandler.Insight, authMiddleware)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(d.Admin)
	e.GET("/v1/admin/users", adminHandler.ListUsers, authMiddleware, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis, d.NATS)

	e.GET("/health", healthHandler.Liveness)             // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)   // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
