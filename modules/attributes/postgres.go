package attributes

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-io/tempora/core"
	"github.com/tempora-io/tempora/errors"
)

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

const createAttributesTable = `
CREATE TABLE IF NOT EXISTS scheduler_attributes (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// PostgresStore persists host attributes in postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg *PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.InfraError(fmt.Errorf("failed to parse database config: %w", err))
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.InfraError(fmt.Errorf("failed to create database pool: %w", err))
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		return nil, errors.InfraError(fmt.Errorf("failed to ping database: %w", err))
	}

	if _, err := pool.Exec(ctx, createAttributesTable); err != nil {
		return nil, errors.InfraError(fmt.Errorf("failed to create attributes table: %w", err))
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM scheduler_attributes WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(pgx.ErrNoRows, err) {
			return "", fmt.Errorf("%w: %s", core.ErrAttributeNotFound, key)
		}
		return "", errors.InfraError(err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scheduler_attributes (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrAttributeNotWriteable, key, err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// HealthCheck returns nil if the database is reachable.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
