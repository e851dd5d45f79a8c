package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"betting/cmd"
	"betting/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			_ = godotenv.Load()
			if err := handleMigrationCommand(); err != nil {
				log.Fatalf("Migration error: %v", err)
			}
			return
		case "create-user":
			_ = godotenv.Load()
			if err := handleCreateUserCommand(); err != nil {
				log.Fatalf("Create user error: %v", err)
			}
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("Received shutdown signal, shutting down gracefully...")
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: betting migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleCreateUserCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: betting create-user <email> [starting balance]")
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	balance := ""
	if len(os.Args) > 3 {
		balance = os.Args[3]
	}
	return cmd.CreateUser(context.Background(), databaseURL, os.Args[2], balance)
}
