package main

import (
	"database/sql"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	appmigrations "github.com/mentoverse/mentoverse-platform/migrations"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	if err := run(os.Args[1:], strings.TrimSpace(os.Getenv("DATABASE_URL")), logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

// run applies pending migrations. "force <version>" and "down" are also
// accepted for recovering a dirty schema.
func run(args []string, databaseURL string, logger *logging.Logger) error {
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return err
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	switch {
	case len(args) >= 2 && args[0] == "force":
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return err
		}
		logger.Info("forced schema version", "version", version)
		return nil
	case len(args) >= 1 && args[0] == "down":
		if err := m.Steps(-1); err != nil {
			return err
		}
		logger.Info("rolled back one migration")
		return nil
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, _ := m.Version()
	logger.Info("migrations complete", "version", version, "dirty", dirty)
	return nil
}
