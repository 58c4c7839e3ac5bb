package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/logger"
)

// migrateLogger routes golang-migrate output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	var migrationDir string
	var verbose bool
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.BoolVar(&verbose, "v", false, "Log every applied migration")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Migration failed to initialize")
	}
	defer m.Close()
	m.Log = migrateLogger{log: log, verbose: verbose}

	switch command := args[0]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Up failed")
		}
		log.Info().Msg("Migrated up successfully")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Down failed")
		}
		log.Info().Msg("Migrated down successfully")
	case "steps":
		n := requireInt(log, args, "steps")
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Int("steps", n).Msg("Steps failed")
		}
		log.Info().Int("steps", n).Msg("Migrated successfully")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("No migrations applied")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Version failed")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current version")
	case "force":
		v := requireInt(log, args, "force")
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("Force failed")
		}
		log.Info().Int("version", v).Msg("Forced version")
	default:
		printUsage()
	}
}

func requireInt(log zerolog.Logger, args []string, command string) int {
	if len(args) < 2 {
		log.Fatal().Msgf("%s requires a numeric argument", command)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatal().Err(err).Str("arg", args[1]).Msg("Invalid number")
	}
	return n
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, steps <n>, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
