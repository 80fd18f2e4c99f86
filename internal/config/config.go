// Package config loads server settings from flags with environment fallbacks.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr         string
	AllowOrigins string
	LogLevel     string
	LogFormat    string
	DatabaseURL  string
}

// Load parses args (without the program name). Flags win over environment variables, which win
// over defaults.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var cfg Config
	fs.StringVar(&cfg.Addr, "addr", getenv("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", getenv("CHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", getenv("CHESS_LOG_LEVEL", "info"), "debug, info, warn, error or fatal")
	fs.StringVar(&cfg.LogFormat, "log-format", getenv("CHESS_LOG_FORMAT", "text"), "text or json")
	fs.StringVar(&cfg.DatabaseURL, "database-url", getenv("DATABASE_URL", ""), "postgres DSN for the game archive; empty disables it")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("empty listen address: %w", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: %w", c.LogFormat, ErrInvalidConfig)
	}
	return nil
}

// SetupLogging installs the apex/log handler and level described by c.
func (c Config) SetupLogging() {
	if c.LogFormat == "json" {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}
	log.SetLevel(log.MustParseLevel(c.LogLevel))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
