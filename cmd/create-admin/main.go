package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/database"
	"github.com/eduin/eduin-backend/internal/logger"
	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
)

func main() {
	reset := flag.Bool("reset", false, "Reset the password of an existing admin instead of creating one")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	if *reset {
		fmt.Println("=== Reset Admin Password ===")
	} else {
		fmt.Println("=== Create New Admin User ===")
	}

	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 64 {
		fmt.Println("Error: Username must be 3 to 64 characters")
		return
	}

	password, ok := readPassword()
	if !ok {
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	if *reset {
		admin, err := adminRepo.GetByUsername(ctx, username)
		if errors.Is(err, repository.ErrNotFound) {
			fmt.Printf("Error: Admin '%s' does not exist\n", username)
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to look up admin")
		}
		if err := adminRepo.UpdatePassword(ctx, admin.ID, string(hashedPassword)); err != nil {
			log.Fatal().Err(err).Msg("Failed to update password")
		}
		// Existing tokens stay valid until they expire or the admin logs out.
		fmt.Printf("\nSuccess! Password for '%s' updated\n", admin.Username)
		return
	}

	newAdmin := &model.Admin{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := adminRepo.Create(ctx, newAdmin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Printf("Error: Admin '%s' already exists (use -reset to change the password)\n", username)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' created with ID: %d\n", newAdmin.Username, newAdmin.ID)
}

func readPassword() (string, bool) {
	fmt.Print("Enter Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return "", false
	}
	if len(first) < 6 || len(first) > 128 {
		fmt.Println("Error: Password must be 6 to 128 characters")
		return "", false
	}

	fmt.Print("Confirm Password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return "", false
	}
	if string(first) != string(second) {
		fmt.Println("Error: Passwords do not match")
		return "", false
	}
	return string(first), true
}
