package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dafibh/fortuna/fortuna-report/internal/config"
	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(os.Stderr, err.Error())
		return exitError
	}

	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger := log.Logger.Level(cfg.LogLevel).With().Str("run_id", uuid.NewString()).Logger()

	// Cancel in-flight store calls on Ctrl-C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the configured store
	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		printError(os.Stderr, err.Error())
		return exitError
	}
	defer stores.Close()

	// Initialize services
	expenseService := service.NewExpenseService(stores.expenses)
	budgetService := service.NewBudgetService(stores.budgets, stores.expenses)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		expenses: expenseService,
		budgets:  budgetService,
		objectStore: func(ctx context.Context, bucket string) (domain.ReportObjectStore, error) {
			return newS3Store(ctx, cfg.S3, bucket)
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	return a.run(ctx, os.Args[1:])
}
