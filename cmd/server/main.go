package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/docs"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/auth"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/cache"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/config"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/db"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/handler"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/repository"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/router"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/service"
)

// @title User Service API
// @version 1.0
// @description Authentication and user management service with JWT bearer tokens.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RememberMeExpiry)
	policy := service.NewRolePolicy()

	authService := service.NewAuthService(userRepo, hasher, jwtService, policy, cacheClient)
	adminService := service.NewAdminService(userRepo, authService, policy, cacheClient)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService, adminService)

	router.Register(e, cfg, authHandler, userHandler, adminService)

	// Idempotent bootstrap: the directory never starts without an admin.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := adminService.EnsureDefaultAdmin(seedCtx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword, cfg.DefaultAdminName); err != nil {
		cancel()
		log.Fatalf("default admin bootstrap: %v", err)
	}
	cancel()

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
