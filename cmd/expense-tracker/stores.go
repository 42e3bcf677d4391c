package main

import (
	"context"
	"database/sql"

	"github.com/dafibh/fortuna/fortuna-report/internal/config"
	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/repository/postgres"
	"github.com/dafibh/fortuna/fortuna-report/internal/repository/sqlite"
	"github.com/dafibh/fortuna/fortuna-report/internal/repository/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// storeSet is the repositories of one backing store plus the handle that closes it
type storeSet struct {
	expenses domain.ExpenseRepository
	budgets  domain.BudgetRepository
	close    func()
}

func (s *storeSet) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storeSet, error) {
	if cfg.UsePostgres() {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Debug().Msg("Connected to PostgreSQL")
		return postgresStores(pool), nil
	}

	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", cfg.SQLitePath).Msg("Opened SQLite database")
	return sqliteStores(db), nil
}

func postgresStores(pool *pgxpool.Pool) *storeSet {
	return &storeSet{
		expenses: postgres.NewExpenseRepository(pool),
		budgets:  postgres.NewBudgetRepository(pool),
		close:    pool.Close,
	}
}

func sqliteStores(db *sql.DB) *storeSet {
	return &storeSet{
		expenses: sqlite.NewExpenseRepository(db),
		budgets:  sqlite.NewBudgetRepository(db),
		close:    func() { _ = db.Close() },
	}
}

func newS3Store(ctx context.Context, s3cfg config.S3Config, bucket string) (domain.ReportObjectStore, error) {
	if bucket != "" {
		s3cfg.Bucket = bucket
	}
	return storage.NewS3ReportRepository(ctx, s3cfg)
}
