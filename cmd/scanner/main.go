// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// The scanner binary runs a gate verifier. It reads decoded QR strings
// line by line from stdin, validates them against the verification
// service and prints operator feedback.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/esalama/gatecheck/internal/config"
	"github.com/esalama/gatecheck/internal/gateapi"
	"github.com/esalama/gatecheck/internal/i18n"
	"github.com/esalama/gatecheck/internal/notify"
	"github.com/esalama/gatecheck/internal/scanner"
	"github.com/esalama/gatecheck/internal/server"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "scanner",
		Usage:  "Run a gate scanner against the verification service",
		Flags:  config.ScannerFlags(),
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewScannerFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	if cfg.ScannerID == "" {
		cfg.ScannerID = "gate-" + uuid.NewString()
	}

	slog.Info("starting scanner",
		"server_url", cfg.ServerURL,
		"scanner_id", cfg.ScannerID,
		"location", cfg.Location,
	)

	client := gateapi.New(cfg.ServerURL, cfg.ValidateTimeout)
	dispatcher := notify.NewDispatcher(client, i18n.MatchLanguage(cfg.Language))

	pipeline := scanner.New(client, client, dispatcher, scanner.Config{
		ScannerID:       cfg.ScannerID,
		Location:        cfg.Location,
		Cooldown:        cfg.Cooldown,
		ValidateTimeout: cfg.ValidateTimeout,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := pipeline.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("pipeline stopped", "error", err)
			stop()
		}
	}()

	go printFeedback(ctx, pipeline.Feedback())

	// Each stdin line is one decoded QR string from the camera.
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			pipeline.Submit(strings.TrimSpace(sc.Text()))
		}
		stop()
	}()

	<-ctx.Done()
	slog.Info("scanner stopped")
	return nil
}

func printFeedback(ctx context.Context, feedback <-chan scanner.Feedback) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-feedback:
			if !ok {
				return
			}
			fmt.Printf("[%s] %s %s\n", f.ColorHint, f.State, f.Message)
		}
	}
}
