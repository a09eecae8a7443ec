package presets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/resilience"
)

const schema = `CREATE TABLE IF NOT EXISTS presets (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres serves presets from the presets table. Queries are bounded by a
// timeout, retried on transient failure and guarded by a circuit breaker.
type Postgres struct {
	db      *postgres.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	timeout time.Duration
	logger  *slog.Logger
}

// NewPostgres creates a Postgres store. A nil breaker gets a default one.
func NewPostgres(db *postgres.Client, breaker *resilience.CircuitBreaker, timeout time.Duration) *Postgres {
	if breaker == nil {
		breaker = NewBreaker(nil)
	}
	return &Postgres{
		db:      db,
		breaker: breaker,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
			RetryIf:      isTransient,
		},
		timeout: timeout,
		logger:  logger.WithComponent("preset-store"),
	}
}

// NewBreaker returns the circuit breaker used for preset queries. Missing
// presets do not count as failures.
func NewBreaker(onStateChange func(name string, from, to resilience.State)) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker("preset-store", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     15 * time.Second,
		OnStateChange:    onStateChange,
		IsFailure:        isTransient,
	})
}

// EnsureSchema creates the presets table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating presets table: %w", err)
	}
	return nil
}

// Seed upserts the given presets in a single transaction.
func (s *Postgres) Seed(ctx context.Context, list []Preset) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO presets (name, body) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		)
		if err != nil {
			return fmt.Errorf("preparing preset upsert: %w", err)
		}
		defer stmt.Close()
		for _, p := range list {
			if _, err := stmt.ExecContext(ctx, p.Name, p.Body); err != nil {
				return fmt.Errorf("upserting preset %s: %w", p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("presets seeded", "count", len(list))
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]Preset, error) {
	var out []Preset
	err := s.guard(ctx, "list presets", func(ctx context.Context) error {
		list, err := s.queryAll(ctx)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	return out, err
}

func (s *Postgres) Get(ctx context.Context, name string) (Preset, error) {
	var out Preset
	err := s.guard(ctx, "get preset", func(ctx context.Context) error {
		var body string
		err := s.db.DB.QueryRowContext(ctx, `SELECT body FROM presets WHERE name = $1`, name).Scan(&body)
		if errors.Is(err, sql.ErrNoRows) {
			known, listErr := s.queryAll(ctx)
			if listErr != nil {
				return listErr
			}
			return notFound(name, Names(known))
		}
		if err != nil {
			return fmt.Errorf("querying preset %s: %w", name, err)
		}
		out = Preset{Name: name, Body: body}
		return nil
	})
	return out, err
}

// Ping reports whether the store can serve queries.
func (s *Postgres) Ping(ctx context.Context) error {
	if s.breaker.GetState() == resilience.StateOpen {
		return resilience.ErrCircuitOpen
	}
	return s.db.Ping(ctx)
}

func (s *Postgres) queryAll(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.DB.QueryContext(ctx, `SELECT name, body FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	list := make([]Preset, 0)
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.Name, &p.Body); err != nil {
			return nil, fmt.Errorf("scanning preset row: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *Postgres) guard(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := resilience.Retry(ctx, op, s.retry, func() error {
		return s.breaker.Execute(func() error {
			return resilience.WithTimeout(ctx, s.timeout, op, fn)
		})
	})
	if err == nil || errors.Is(err, apperrors.ErrPresetNotFound) || errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("preset store unavailable", "operation", op, "error", err)
	return apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "preset store unavailable")
}

// isTransient reports whether err is worth retrying.
func isTransient(err error) bool {
	return !errors.Is(err, apperrors.ErrPresetNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, resilience.ErrCircuitOpen)
}
