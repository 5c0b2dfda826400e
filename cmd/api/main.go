package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cliptube/internal/config"
	"cliptube/internal/database"
	"cliptube/internal/domain"
	"cliptube/internal/middleware"
	"cliptube/internal/modules/auth"
	"cliptube/internal/modules/channel"
	"cliptube/internal/modules/media"
	jwtsvc "cliptube/internal/pkg/jwt"
	"cliptube/internal/repository"
)

func main() {
	_ = godotenv.Load() // .env is optional, real env wins

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Subscription{},
		&domain.Upload{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	j := jwtsvc.New(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	mediaService := media.NewService(uploadRepo, cfg.UploadsDir, cfg.StaticURLBase, cfg.MaxUploadSizeMB<<20)

	authService := auth.NewService(userRepo, mediaService, j)
	cookies := auth.NewCookieConfig(cfg.CookieSecure, cfg.CookieSameSite, cfg.CookiePath, cfg.AccessTTL, cfg.RefreshTTL)
	authHandler := auth.NewHandler(authService, cookies)

	channelService := channel.NewService(userRepo, subscriptionRepo)
	channelHandler := channel.NewHandler(channelService)

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	r.Static(cfg.StaticURLBase, cfg.UploadsDir)

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// viewer: identity is optional, used for is_subscribed
		viewer := v1.Group("/")
		viewer.Use(middleware.OptionalJWTAuth(j))
		{
			channelHandler.RegisterViewerRoutes(viewer)
		}

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			channelHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
