// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// The badge binary drives a student's rotating QR display. It requests
// a fresh credential every rotation interval and prints the current
// credential with its remaining validity.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/esalama/gatecheck/internal/config"
	"github.com/esalama/gatecheck/internal/gateapi"
	"github.com/esalama/gatecheck/internal/issuer"
	"github.com/esalama/gatecheck/internal/models"
	"github.com/esalama/gatecheck/internal/server"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "badge",
		Usage:  "Display rotating check-in codes for a student",
		Flags:  config.BadgeFlags(),
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewBadgeFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	intent, err := models.ParseIntent(cfg.Intent)
	if err != nil {
		return err
	}

	slog.Info("starting badge display",
		"server_url", cfg.ServerURL,
		"student_id", cfg.StudentID,
		"intent", intent,
	)

	client := gateapi.New(cfg.ServerURL, 0)
	iss := issuer.New(client, cfg.StudentID, intent, cfg.RotationInterval)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := iss.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("issuer stopped", "error", err)
			stop()
		}
	}()

	var lastCredential string
	for tick := range iss.Countdown(ctx) {
		token, ok := iss.Current()
		if !ok {
			continue
		}
		if token.Credential != lastCredential {
			lastCredential = token.Credential
			fmt.Printf("\ncode: %s\n", token.Credential)
		}
		fmt.Printf("\rvalid for %3ds", tick.RemainingSeconds)
	}
	fmt.Println()

	slog.Info("badge display stopped")
	return nil
}
