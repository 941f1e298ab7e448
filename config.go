package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var errTokenNeedsSecret = errors.New("-issue-token needs -admin-secret or an on-disk -db")

// Config holds server settings from .env, the environment, and flags
type Config struct {
	Addr        string
	ClientDir   string
	DBPath      string
	AdminSecret string
	PublicURL   string
	MaxRooms    int
	IssueToken  bool
}

// LoadConfig reads an optional .env file, then the environment, then args.
// Flags win over the environment.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	maxRooms := 100
	if v := os.Getenv("SPINBALL_MAX_ROOMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("SPINBALL_MAX_ROOMS: %w", err)
		}
		maxRooms = n
	}

	cfg := Config{}
	fset := flag.NewFlagSet("spinball-server", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", envOr("SPINBALL_ADDR", ":8080"), "HTTP listen address")
	fset.StringVar(&cfg.ClientDir, "client", envOr("SPINBALL_CLIENT_DIR", "../client"), "Path to client directory")
	fset.StringVar(&cfg.DBPath, "db", envOr("SPINBALL_DB", ":memory:"), "SQLite path for analytics")
	fset.StringVar(&cfg.AdminSecret, "admin-secret", os.Getenv("SPINBALL_ADMIN_SECRET"), "HMAC secret for admin tokens")
	fset.StringVar(&cfg.PublicURL, "public-url", os.Getenv("SPINBALL_PUBLIC_URL"), "Base URL used in invite links")
	fset.IntVar(&cfg.MaxRooms, "max-rooms", maxRooms, "Maximum concurrent rooms")
	fset.BoolVar(&cfg.IssueToken, "issue-token", false, "Print an admin token and exit")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.IssueToken && cfg.AdminSecret == "" && cfg.DBPath == ":memory:" {
		return Config{}, errTokenNeedsSecret
	}
	if cfg.MaxRooms <= 0 {
		return Config{}, fmt.Errorf("max rooms must be positive, got %d", cfg.MaxRooms)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c Config) logSummary() {
	log.Printf("config: addr=%s client=%s db=%s max-rooms=%d", c.Addr, c.ClientDir, c.DBPath, c.MaxRooms)
}
