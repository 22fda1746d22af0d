package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/auth"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/config"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/db"
	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/repository"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/service"
)

// SeedUserData represents one entry of the seed file.
type SeedUserData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func main() {
	file := flag.String("file", "", "optional JSON file with users to seed")
	flag.Parse()

	log.Println("Starting seed script...")

	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RememberMeExpiry)
	policy := service.NewRolePolicy()
	authService := service.NewAuthService(userRepo, hasher, jwtService, policy, nil)
	adminService := service.NewAdminService(userRepo, authService, policy, nil)

	ctx := context.Background()

	admin, err := adminService.EnsureDefaultAdmin(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword, cfg.DefaultAdminName)
	if err != nil {
		log.Fatalf("Failed to ensure default admin: %v", err)
	}
	if admin != nil {
		log.Printf("Default admin created: %s", admin.Email)
	} else {
		log.Printf("Default admin already exists: %s", cfg.DefaultAdminEmail)
	}

	if *file == "" {
		log.Println("No seed file given, done")
		return
	}

	users, err := readSeedFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	log.Printf("Read %d users from %s", len(users), *file)

	created, skipped := 0, 0
	for _, item := range users {
		_, err := authService.Register(ctx, item.Email, item.Password, item.FullName, item.Role)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			skipped++
		default:
			log.Fatalf("Failed to seed user %s: %v", item.Email, err)
		}
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}

// readSeedFile parses the JSON seed file.
func readSeedFile(path string) ([]SeedUserData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var users []SeedUserData
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}
