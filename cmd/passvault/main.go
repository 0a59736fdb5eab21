package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/passvault/internal/buildinfo"
	"github.com/dmitrijs2005/passvault/internal/cli"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/database"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
)

// shutdownGrace bounds how long an interrupted operation may take to
// roll back before the process exits.
const shutdownGrace = 2 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("invalid configuration: %v", err)
		return 1
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Printf("error creating logger: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer db.Close()

	app := cli.NewApp(cfg, vault.NewSQLiteRepository(db), logger)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		// stdin reads cannot be cancelled; wait only for in-flight work
		select {
		case <-done:
		case <-time.After(shutdownGrace):
		}
		fmt.Println("\nInterrupted. Bye!")
		return 0
	}

	switch {
	case errors.Is(err, common.ErrAuthAttemptsExhausted):
		fmt.Fprintln(os.Stderr, "Too many failed master code attempts.")
		return 1
	case err != nil:
		logger.Error(ctx, "fatal error", "error", err)
		return 1
	}
	return 0
}
