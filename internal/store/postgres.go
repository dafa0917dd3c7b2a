package store

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/tomz197/redlight/internal/config"
	"github.com/tomz197/redlight/internal/game"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres stores results in a round_results table.
type Postgres struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects, pings and migrates the database.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("database ready", zap.Int32("max_conns", poolCfg.MaxConns))
	return &Postgres{Pool: pool, log: log}, nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, r Result) error {
	finished := r.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	_, err := p.Pool.Exec(ctx,
		`INSERT INTO round_results (username, fingerprint, difficulty, outcome, elapsed_ms, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.Username, r.Fingerprint, r.Difficulty, int16(r.Outcome), r.Elapsed.Milliseconds(), finished,
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (p *Postgres) Top(ctx context.Context, difficulty string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := p.Pool.Query(ctx,
		`SELECT player, username, elapsed_ms, finished_at FROM (
		     SELECT DISTINCT ON (player) player, username, elapsed_ms, finished_at
		     FROM (
		         SELECT CASE WHEN fingerprint <> '' THEN 'key:' || fingerprint ELSE 'name:' || username END AS player,
		                username, elapsed_ms, finished_at
		         FROM round_results
		         WHERE difficulty = $1 AND outcome = $2
		     ) keyed
		     ORDER BY player, elapsed_ms, finished_at
		 ) best
		 ORDER BY elapsed_ms, finished_at
		 LIMIT $3`,
		difficulty, int16(game.OutcomeWin), n,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.Player, &e.Username, &ms, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.Elapsed = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return entries, nil
}

func (p *Postgres) Close() {
	p.Pool.Close()
}
