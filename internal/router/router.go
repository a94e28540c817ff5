package router

import (
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/rolodex/internal/config"
	"github.com/monocle-dev/rolodex/internal/handlers"
	"github.com/monocle-dev/rolodex/internal/metrics"
	"github.com/monocle-dev/rolodex/internal/middleware"
	"github.com/monocle-dev/rolodex/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config      config.Config
	Log         logrus.FieldLogger
	DB          *gorm.DB
	Auth        *services.AuthService
	Contacts    *services.ContactService
	RateLimiter *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.Recovery(deps.Log),
		middleware.RequestLogger(deps.Log),
		metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     deps.Config.Origins(),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.ErrorHandler(deps.Log),
	)

	r.Static("/avatars", filepath.Join(deps.Config.PublicDir, "avatars"))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.NoRoute(middleware.NotFoundRoute)

	authenticate := middleware.AuthMiddleware(deps.Auth)
	validID := middleware.ValidID("id")
	limit := deps.RateLimiter.Handler()

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Config.TempDir)
	contactHandler := handlers.NewContactHandler(deps.Contacts)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck(deps.DB, deps.Log))

		auth := api.Group("/auth")
		{
			auth.POST("/register", limit, authHandler.Register)
			auth.GET("/verify/:code", authHandler.VerifyEmail)
			auth.POST("/verify", limit, authHandler.ResendVerification)
			auth.POST("/login", limit, authHandler.Login)
			auth.GET("/current", authenticate, authHandler.Current)
			auth.POST("/logout", authenticate, authHandler.Logout)
			auth.PATCH("/avatars", authenticate, authHandler.ChangeAvatar)
		}

		contacts := api.Group("/contacts", authenticate)
		{
			contacts.GET("", contactHandler.List)
			contacts.POST("", contactHandler.Create)
			contacts.GET("/:id", validID, contactHandler.Get)
			contacts.PUT("/:id", validID, contactHandler.Update)
			contacts.PATCH("/:id/favorite", validID, contactHandler.UpdateFavorite)
			contacts.DELETE("/:id", validID, contactHandler.Delete)
		}
	}

	return r
}
