// Package main is the entry point for the quoter server.
//
// main stays minimal: read configuration, build the logger, hand everything
// to internal/server. All actual logic lives in the imported packages.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mdewit/quoter/internal/server"
)

func main() {
	// A .env file is optional — real environment variables win either way.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/quoter.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// SESSION_SECRET signs the identity cookie. Generate one with:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	// If unset we fall back to a random per-process secret: everything works,
	// but all sessions are invalidated on restart.
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("SESSION_SECRET not set — using a random secret, sessions will not survive restarts")
	}

	lifetime := 24 * time.Hour
	if hoursStr := os.Getenv("SESSION_LIFETIME_HOURS"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours <= 0 {
			logger.Error("invalid SESSION_LIFETIME_HOURS value", slog.String("value", hoursStr))
			os.Exit(1)
		}
		lifetime = time.Duration(hours) * time.Hour
	}

	templateDir := os.Getenv("TEMPLATE_DIR")
	if templateDir == "" {
		templateDir, _ = filepath.Abs("web/templates")
	}
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir, _ = filepath.Abs("web/static")
	}

	cfg := server.Config{
		Port:            port,
		TemplateDir:     templateDir,
		StaticDir:       staticDir,
		DBPath:          dbPath,
		SessionSecret:   secret,
		SessionLifetime: lifetime,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
