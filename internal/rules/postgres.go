package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/config"
)

const (
	createRulesTableSQL = `CREATE TABLE IF NOT EXISTS alert_rules (
        id           TEXT PRIMARY KEY,
        symbol       TEXT NOT NULL,
        target_price NUMERIC NOT NULL,
        condition    TEXT NOT NULL,
        enabled      BOOLEAN NOT NULL DEFAULT TRUE,
        created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
    );`

	listRulesSQL = `SELECT id, symbol, target_price, condition, enabled, created_at, updated_at
    FROM alert_rules
    ORDER BY created_at, id;`

	getRuleSQL = `SELECT id, symbol, target_price, condition, enabled, created_at, updated_at
    FROM alert_rules
    WHERE id = $1;`

	insertRuleSQL = `INSERT INTO alert_rules (id, symbol, target_price, condition, enabled, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7);`

	updateRuleSQL = `UPDATE alert_rules
    SET symbol = $2, target_price = $3, condition = $4, enabled = $5, updated_at = $6
    WHERE id = $1;`

	setRuleEnabledSQL = `UPDATE alert_rules
    SET enabled = $2, updated_at = $3
    WHERE id = $1;`

	deleteRuleSQL = `DELETE FROM alert_rules WHERE id = $1;`
)

// NewPool configures a PostgreSQL connection pool from runtime settings.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.database.dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return pool, nil
}

// PostgresStore persists rules in an alert_rules table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wires a pgx pool into a store and ensures the schema.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createRulesTableSQL); err != nil {
		return nil, fmt.Errorf("ensure alert_rules table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// List returns all rules in creation order.
func (s *PostgresStore) List(ctx context.Context) ([]Rule, error) {
	rows, err := s.pool.Query(ctx, listRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return out, nil
}

// Get returns one rule by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (Rule, error) {
	row := s.pool.QueryRow(ctx, getRuleSQL, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrNotFound
		}
		return Rule{}, err
	}
	return rule, nil
}

// Add inserts a new rule.
func (s *PostgresStore) Add(ctx context.Context, rule Rule) error {
	_, err := s.pool.Exec(ctx, insertRuleSQL,
		rule.ID,
		rule.Symbol,
		rule.Target.String(),
		string(rule.Condition),
		rule.Enabled,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

// Update rewrites every mutable field of a rule.
func (s *PostgresStore) Update(ctx context.Context, rule Rule) error {
	tag, err := s.pool.Exec(ctx, updateRuleSQL,
		rule.ID,
		rule.Symbol,
		rule.Target.String(),
		string(rule.Condition),
		rule.Enabled,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Enable re-arms a rule.
func (s *PostgresStore) Enable(ctx context.Context, id string) error {
	return s.setEnabled(ctx, id, true)
}

// Disable marks a rule inactive without deleting it.
func (s *PostgresStore) Disable(ctx context.Context, id string) error {
	return s.setEnabled(ctx, id, false)
}

func (s *PostgresStore) setEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := s.pool.Exec(ctx, setRuleEnabledSQL, id, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set rule enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a rule permanently.
func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, deleteRuleSQL, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func scanRule(row pgx.Row) (Rule, error) {
	var (
		rule   Rule
		target string
		cond   string
	)
	if err := row.Scan(&rule.ID, &rule.Symbol, &target, &cond, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, err
		}
		return Rule{}, fmt.Errorf("scan rule: %w", err)
	}

	parsed, err := decimal.NewFromString(target)
	if err != nil {
		return Rule{}, fmt.Errorf("parse target price: %w", err)
	}
	rule.Target = parsed
	rule.Condition = Condition(cond)
	return rule, nil
}

var _ Store = (*PostgresStore)(nil)
