// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// Config holds the server configuration.
type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// SMTPConfig configures the notification email delivery. Leaving Host
// empty disables email fan-out; in-app notifications still work.
type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// ScannerConfig holds the gate scanner configuration.
type ScannerConfig struct { //nolint:govet // fieldalignment not critical
	ServerURL       string
	ScannerID       string
	Location        string
	Cooldown        time.Duration
	ValidateTimeout time.Duration
	Language        string
	Log             LogConfig
}

// BadgeConfig holds the badge display configuration.
type BadgeConfig struct { //nolint:govet // fieldalignment not critical
	ServerURL        string
	StudentID        string
	Intent           string
	RotationInterval time.Duration
	Log              LogConfig
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
	}
}

func NewScannerFromCLI(cmd *cli.Command) *ScannerConfig {
	return &ScannerConfig{
		ServerURL:       cmd.String("server-url"),
		ScannerID:       cmd.String("scanner-id"),
		Location:        cmd.String("location"),
		Cooldown:        cmd.Duration("cooldown"),
		ValidateTimeout: cmd.Duration("validate-timeout"),
		Language:        cmd.String("language"),
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
	}
}

func NewBadgeFromCLI(cmd *cli.Command) *BadgeConfig {
	return &BadgeConfig{
		ServerURL:        cmd.String("server-url"),
		StudentID:        cmd.String("student-id"),
		Intent:           cmd.String("intent"),
		RotationInterval: cmd.Duration("rotation-interval"),
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
	}
}

// Flags returns the server CLI flags.
func Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/gatecheck.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host for notification emails (empty disables email)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "From address for notification emails",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "eSalama Gate",
			Usage:   "From display name for notification emails",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Use TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
	}
	return append(flags, logFlags()...)
}

// ScannerFlags returns the gate scanner CLI flags.
func ScannerFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "server-url",
			Value:   "http://localhost:8080",
			Usage:   "Base URL of the verification server",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SERVER_URL"), toml.TOML("scanner.server_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "scanner-id",
			Usage:   "Identifier reported with each attendance record (generated if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SCANNER_ID"), toml.TOML("scanner.id", configFile)),
		},
		&cli.StringFlag{
			Name:    "location",
			Value:   "main gate",
			Usage:   "Gate location reported with each attendance record",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SCANNER_LOCATION"), toml.TOML("scanner.location", configFile)),
		},
		&cli.DurationFlag{
			Name:    "cooldown",
			Value:   3 * time.Second,
			Usage:   "Minimum time between accepted scans of the same code",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SCANNER_COOLDOWN"), toml.TOML("scanner.cooldown", configFile)),
		},
		&cli.DurationFlag{
			Name:    "validate-timeout",
			Value:   15 * time.Second,
			Usage:   "Timeout for validation requests",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SCANNER_VALIDATE_TIMEOUT"), toml.TOML("scanner.validate_timeout", configFile)),
		},
		&cli.StringFlag{
			Name:    "language",
			Value:   "en",
			Usage:   "Notification language (en, sw)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SCANNER_LANGUAGE"), toml.TOML("scanner.language", configFile)),
		},
	}
	return append(flags, logFlags()...)
}

// BadgeFlags returns the badge display CLI flags.
func BadgeFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "server-url",
			Value:   "http://localhost:8080",
			Usage:   "Base URL of the verification server",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SERVER_URL"), toml.TOML("badge.server_url", configFile)),
		},
		&cli.StringFlag{
			Name:     "student-id",
			Usage:    "Student identifier to issue codes for",
			Required: true,
			Sources:  cli.NewValueSourceChain(cli.EnvVar("BADGE_STUDENT_ID"), toml.TOML("badge.student_id", configFile)),
		},
		&cli.StringFlag{
			Name:    "intent",
			Value:   "arrival",
			Usage:   "Scan intent (arrival, departure)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BADGE_INTENT"), toml.TOML("badge.intent", configFile)),
		},
		&cli.DurationFlag{
			Name:    "rotation-interval",
			Value:   time.Minute,
			Usage:   "How often to request a fresh code",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BADGE_ROTATION_INTERVAL"), toml.TOML("badge.rotation_interval", configFile)),
		},
	}
	return append(flags, logFlags()...)
}
