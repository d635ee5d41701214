package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/yamdb/review-api/internal/api/handler"
	"github.com/yamdb/review-api/internal/api/middleware"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     ports.AuthService
	Catalog  ports.CatalogService
	Reviews  ports.ReviewService
	Comments ports.CommentService
	Users    ports.UserService
	Tokens   middleware.TokenParser
	Health   map[string]handler.HealthCheck
	Log      zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default registry, where the service metrics live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "yamdb",
		Registerer: registerer,
	}))

	// --- Operational endpoints ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth (always open, never reads the Authorization header) ---
	auth := handler.NewAuthHandler(d.Auth)
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/signup", auth.SignUp)
	authGroup.POST("/token", auth.Token)

	v1 := e.Group("/v1", middleware.Authenticate(d.Tokens, d.Log))

	// --- Catalog ---
	catalog := handler.NewCatalogHandler(d.Catalog)
	cat := middleware.Authorize(policy.Catalog)
	v1.GET("/categories", catalog.ListCategories, cat)
	v1.POST("/categories", catalog.CreateCategory, cat)
	v1.DELETE("/categories/:slug", catalog.DeleteCategory, cat)
	v1.GET("/genres", catalog.ListGenres, cat)
	v1.POST("/genres", catalog.CreateGenre, cat)
	v1.DELETE("/genres/:slug", catalog.DeleteGenre, cat)
	v1.GET("/titles", catalog.ListTitles, cat)
	v1.POST("/titles", catalog.CreateTitle, cat)
	v1.GET("/titles/:title_id", catalog.GetTitle, cat)
	v1.PATCH("/titles/:title_id", catalog.UpdateTitle, cat)
	v1.DELETE("/titles/:title_id", catalog.DeleteTitle, cat)

	// --- Reviews and comments ---
	reviews := handler.NewReviewHandler(d.Reviews, d.Comments)
	content := v1.Group("/titles/:title_id/reviews", middleware.Authorize(policy.Content))
	content.GET("", reviews.ListReviews)
	content.POST("", reviews.CreateReview)
	content.GET("/:review_id", reviews.GetReview)
	content.PATCH("/:review_id", reviews.UpdateReview)
	content.DELETE("/:review_id", reviews.DeleteReview)
	content.GET("/:review_id/comments", reviews.ListComments)
	content.POST("/:review_id/comments", reviews.CreateComment)
	content.GET("/:review_id/comments/:comment_id", reviews.GetComment)
	content.PATCH("/:review_id/comments/:comment_id", reviews.UpdateComment)
	content.DELETE("/:review_id/comments/:comment_id", reviews.DeleteComment)

	// --- Users ---
	users := handler.NewUserHandler(d.Users)
	me := v1.Group("/users/me", middleware.Authorize(policy.Profile))
	me.GET("", users.Me)
	me.PATCH("", users.UpdateMe)

	admin := v1.Group("/users", middleware.Authorize(policy.Users))
	admin.GET("", users.List)
	admin.POST("", users.Create)
	admin.GET("/:username", users.Get)
	admin.PATCH("/:username", users.Update)
	admin.DELETE("/:username", users.Delete)

	return e
}
