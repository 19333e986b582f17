// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// JWTSecret is the HS256 signing secret. Never logged.
	JWTSecret string `json:"jwt_secret"`

	// TokenLifetimeMS is the bearer token lifetime in milliseconds.
	TokenLifetimeMS int64 `json:"token_lifetime_ms"`

	// TLSCert and TLSKey enable the TLS listener when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// PurgeRetentionDays is how long soft-deleted complaints are kept.
	PurgeRetentionDays int `json:"purge_retention_days"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// TokenLifetime returns the token lifetime as a duration.
func (o *Options) TokenLifetime() time.Duration {
	return time.Duration(o.TokenLifetimeMS) * time.Millisecond
}

// PurgeRetention returns the soft-delete retention as a duration.
func (o *Options) PurgeRetention() time.Duration {
	return time.Duration(o.PurgeRetentionDays) * 24 * time.Hour
}

// TLSEnabled reports whether both certificate and key paths are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("gophreport", flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&o.JWTSecret, "s", "", "jwt signing secret (at least 32 bytes)")
	fs.Int64Var(&o.TokenLifetimeMS, "t", 24*60*60*1000, "token lifetime in milliseconds")
	fs.StringVar(&o.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&o.TLSKey, "tls-key", "", "path to TLS private key")
	fs.StringVar(&o.LogLevel, "l", "info", "log level")
	fs.IntVar(&o.PurgeRetentionDays, "purge-days", 30, "days to keep soft-deleted complaints")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	return fs
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It exits the process on invalid input.
func Parse() *Options {
	options, err := Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return options
}

// Load builds Options from args, an optional JSON config file and the
// environment. Later sources win: flags, then file, then environment.
func Load(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	if err := newFlagSet(options).Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if secret := getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}
	if lifetime := getenv("TOKEN_LIFETIME_MS"); lifetime != "" {
		ms, err := strconv.ParseInt(lifetime, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_LIFETIME_MS %q: %w", lifetime, err)
		}
		options.TokenLifetimeMS = ms
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	// Token timestamps have whole-second precision.
	if options.TokenLifetimeMS < 0 || options.TokenLifetimeMS%1000 != 0 {
		return nil, fmt.Errorf("token lifetime must be a non-negative whole number of seconds, got %dms", options.TokenLifetimeMS)
	}

	return options, nil
}
