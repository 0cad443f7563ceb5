package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/accounts-api/internal/config"
	"github.com/dimitrije/accounts-api/internal/database"
	"github.com/dimitrije/accounts-api/internal/models"
	"github.com/dimitrije/accounts-api/internal/services"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: promote-role <email> <role>")
		os.Exit(1)
	}

	email := os.Args[1]
	role := os.Args[2]

	if !models.ValidRole(role) {
		log.Fatalf("Invalid role: %s (must be user, maintainer or admin)", role)
	}

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

	userService := services.NewUserService(db)
	if err := userService.SetRole(ctx, email, role); err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	fmt.Printf("Successfully set role of %s to %s\n", email, role)
}
