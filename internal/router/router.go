package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/docket-dev/docket/db"
	"github.com/docket-dev/docket/internal/auth"
	"github.com/docket-dev/docket/internal/config"
	"github.com/docket-dev/docket/internal/handlers"
	"github.com/docket-dev/docket/internal/middleware"
	"github.com/docket-dev/docket/internal/ownership"
	"github.com/docket-dev/docket/internal/realtime"
	"github.com/docket-dev/docket/internal/services"
	"github.com/docket-dev/docket/internal/store"
	"github.com/docket-dev/docket/internal/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP surface needs. Revoker and Hub may be nil.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *gorm.DB
	Stores  *store.Stores
	Tokens  *auth.TokenService
	Revoker auth.Revoker
	Files   *services.FileService
	Hub     *realtime.Hub
}

func New(deps Deps) *gin.Engine {
	validation.Setup()

	if deps.Revoker == nil {
		deps.Revoker = auth.NoopRevoker{}
	}

	if deps.Hub == nil {
		deps.Hub = realtime.NewHub(deps.Config.AllowedOrigins, deps.Logger)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Logger), middleware.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if deps.Config.StorageDriver == config.StorageLocal {
		r.Static("/uploads", deps.Config.UploadDir)
	}

	authHandler := handlers.NewAuthHandler(deps.Stores.Users, deps.Tokens, deps.Revoker, deps.Config.DefaultAvatarURL)
	clientHandler := handlers.NewClientHandler(deps.Stores.Clients)
	caseHandler := handlers.NewCaseHandler(deps.Stores.Cases)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Stores.Appointments, deps.Hub)
	fileHandler := handlers.NewFileHandler(deps.Files, deps.Hub)
	wsHandler := handlers.NewWSHandler(deps.Hub)
	healthHandler := handlers.NewHealthHandler(handlers.PingFunc(func(ctx context.Context) error {
		return db.Ping(ctx, deps.DB)
	}))

	requireAuth := middleware.AuthMiddleware(deps.Tokens, deps.Stores.Users, deps.Revoker)
	requireCase := middleware.RequireCaseOwnership(
		ownership.NewResolver(deps.Stores.Cases, ownership.DefaultRules(deps.Stores.Appointments)...),
	)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Check)
	}

	v1 := api.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.GET("/me", requireAuth, authHandler.Me)
			authGroup.GET("/oauth/:provider", authHandler.BeginSocial)
			authGroup.GET("/oauth/:provider/callback", authHandler.SocialCallback)
		}

		clients := v1.Group("/clients", requireAuth)
		{
			clients.POST("", clientHandler.Create)
			clients.GET("", clientHandler.List)
			clients.GET("/:id", clientHandler.Get)
			clients.PATCH("/:id", clientHandler.Update)
			clients.DELETE("/:id", clientHandler.Delete)
		}

		cases := v1.Group("/cases", requireAuth)
		{
			cases.POST("", caseHandler.Create)
			cases.GET("", caseHandler.List)
			cases.GET("/:caseId", caseHandler.Get)
			cases.PATCH("/:caseId", caseHandler.Update)
			cases.DELETE("/:caseId", caseHandler.Delete)

			scoped := cases.Group("/:caseId", requireCase)
			{
				scoped.POST("/appointments", appointmentHandler.Create)
				scoped.GET("/appointments", appointmentHandler.List)
				scoped.GET("/appointments/:appointmentId", appointmentHandler.Get)
				scoped.PATCH("/appointments/:appointmentId", appointmentHandler.Update)
				scoped.DELETE("/appointments/:appointmentId", appointmentHandler.Delete)

				scoped.POST("/files", fileHandler.Upload)
				scoped.GET("/files", fileHandler.List)
				scoped.GET("/files/:fileId", fileHandler.Get)
				scoped.DELETE("/files/:fileId", fileHandler.Delete)

				scoped.GET("/ws", wsHandler.Subscribe)
			}
		}

		appointments := v1.Group("/appointments", requireAuth, requireCase)
		{
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PATCH("/:id", appointmentHandler.Update)
			appointments.DELETE("/:id", appointmentHandler.Delete)
		}
	}

	return r
}
