package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/dimitrije/accounts-api/internal/config"
	"github.com/dimitrije/accounts-api/internal/database"
	"github.com/dimitrije/accounts-api/internal/handlers"
	authmw "github.com/dimitrije/accounts-api/internal/middleware"
	"github.com/dimitrije/accounts-api/internal/models"
	"github.com/dimitrije/accounts-api/internal/oauth"
	"github.com/dimitrije/accounts-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.JWTAccessExpiry,
		cfg.JWTRefreshExpiry,
		cfg.SessionTokenExpiry,
	)
	userService := services.NewUserService(db)
	hasher := services.NewBcryptHasher()
	googleProvider := oauth.NewGoogleProvider(cfg.Google)
	authService := services.NewAuthService(userService, jwtService, hasher, googleProvider)

	authHandler := handlers.NewAuthHandler(cfg, authService, jwtService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientURL},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/google/redirectUrl", authHandler.GoogleRedirectURL)
	auth.Get("/google/callback", authHandler.GoogleCallback)

	protected := app.Group("/auth")
	protected.Use(authmw.Auth(jwtService))
	protected.Post("/logout", authHandler.Logout)
	protected.Get("/profile", authHandler.Profile)

	admin := app.Group("/auth")
	admin.Use(authmw.Auth(jwtService))
	admin.Use(authmw.RequireRoles(models.RoleAdmin))
	admin.Get("/admin", authHandler.AdminRoute)

	maintainer := app.Group("/auth")
	maintainer.Use(authmw.Auth(jwtService))
	maintainer.Use(authmw.RequireRoles(models.RoleMaintainer, models.RoleAdmin))
	maintainer.Get("/maintainer", authHandler.MaintainerRoute)

	app.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
