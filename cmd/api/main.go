package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/arahman-dev/blogfolio-api/api/swagger"
	"github.com/arahman-dev/blogfolio-api/internal/handler"
	"github.com/arahman-dev/blogfolio-api/internal/middleware"
	"github.com/arahman-dev/blogfolio-api/internal/models"
	"github.com/arahman-dev/blogfolio-api/internal/repository"
	"github.com/arahman-dev/blogfolio-api/internal/service"
	"github.com/arahman-dev/blogfolio-api/internal/storage"
	"github.com/arahman-dev/blogfolio-api/pkg/cache"
	"github.com/arahman-dev/blogfolio-api/pkg/config"
	"github.com/arahman-dev/blogfolio-api/pkg/database"
	"github.com/arahman-dev/blogfolio-api/pkg/export"
	"github.com/arahman-dev/blogfolio-api/pkg/logger"
	corsmiddleware "github.com/arahman-dev/blogfolio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/arahman-dev/blogfolio-api/pkg/middleware/requestid"
)

// @title Blogfolio API
// @version 1.0.0
// @description Blog and portfolio content platform
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	imageStore, err := storage.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("failed to init image storage", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessExpiry:  cfg.JWT.AccessExpiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
		Issuer:        cfg.JWT.Issuer,
	})
	postSvc := service.NewPostService(postRepo, imageStore, validate, logr)
	portfolioSvc := service.NewPortfolioService(portfolioRepo, cacheSvc, export.NewResumeExporter(), validate, logr)

	authHandler := handler.NewAuthHandler(authSvc, cfg.Env == config.EnvProduction)
	postHandler := handler.NewPostHandler(postSvc)
	portfolioHandler := handler.NewPortfolioHandler(portfolioSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authSvc, authHandler, postHandler, portfolioHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerRoutes(api *gin.RouterGroup, authSvc *service.AuthService, authHandler *handler.AuthHandler, postHandler *handler.PostHandler, portfolioHandler *handler.PortfolioHandler) {
	requireAuth := middleware.JWT(authSvc)
	requireAdmin := middleware.RequireRoles(models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.GET("/:slug", postHandler.Get)
		posts.POST("", requireAuth, postHandler.Create)
		posts.PUT("/:id", requireAuth, postHandler.Update)
		posts.DELETE("/:id", requireAuth, postHandler.Delete)
	}

	portfolio := api.Group("/portfolio")
	{
		portfolio.GET("/hero", portfolioHandler.Hero)
		portfolio.PUT("/hero", requireAuth, requireAdmin, portfolioHandler.UpsertHero)

		portfolio.GET("/projects", portfolioHandler.Projects)
		portfolio.POST("/projects", requireAuth, requireAdmin, portfolioHandler.CreateProject)
		portfolio.PUT("/projects/:id", requireAuth, requireAdmin, portfolioHandler.UpdateProject)
		portfolio.DELETE("/projects/:id", requireAuth, requireAdmin, portfolioHandler.DeleteProject)

		portfolio.GET("/skills", portfolioHandler.Skills)
		portfolio.POST("/skills", requireAuth, requireAdmin, portfolioHandler.CreateSkill)
		portfolio.PUT("/skills/:id", requireAuth, requireAdmin, portfolioHandler.UpdateSkill)
		portfolio.DELETE("/skills/:id", requireAuth, requireAdmin, portfolioHandler.DeleteSkill)

		portfolio.GET("/education", portfolioHandler.Education)
		portfolio.POST("/education", requireAuth, requireAdmin, portfolioHandler.CreateEducation)
		portfolio.PUT("/education/:id", requireAuth, requireAdmin, portfolioHandler.UpdateEducation)
		portfolio.DELETE("/education/:id", requireAuth, requireAdmin, portfolioHandler.DeleteEducation)

		portfolio.GET("/contact", portfolioHandler.Contact)
		portfolio.PUT("/contact", requireAuth, requireAdmin, portfolioHandler.UpsertContact)

		portfolio.GET("/comments", middleware.OptionalJWT(authSvc), portfolioHandler.Comments)
		portfolio.POST("/comments", portfolioHandler.CreateComment)
		portfolio.PUT("/comments/:id/approve", requireAuth, requireAdmin, portfolioHandler.ApproveComment)
		portfolio.DELETE("/comments/:id", requireAuth, requireAdmin, portfolioHandler.DeleteComment)

		portfolio.GET("/resume", portfolioHandler.Resume)
	}
}
