package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by every query while the store is unreachable.
var ErrNotConnected = errors.New("database not connected")

const (
	defaultRetryDelay = 5 * time.Second
	dialTimeout       = 10 * time.Second
)

// Pool is the subset of *pgxpool.Pool the handle delegates to.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// DialFunc opens a verified pool for dsn.
type DialFunc func(ctx context.Context, dsn string) (Pool, error)

// State describes the connection lifecycle of a Handle.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// Status is the outcome of the latest connection attempt.
type Status struct {
	State      State
	Err        error
	RetryAfter time.Duration
}

// Handle is the process-wide store connection. It can be created before the
// database is reachable and keeps retrying on a fixed delay; queries issued in
// the meantime fail fast with ErrNotConnected.
type Handle struct {
	dsn        string
	retryDelay time.Duration
	dial       DialFunc
	logger     *zap.Logger

	// connectMu serializes dial attempts; mu only guards pool and status so
	// queries never wait on a dial.
	connectMu sync.Mutex
	mu        sync.RWMutex
	pool      Pool
	status    Status
}

// NewHandle creates a disconnected handle. A nil dial uses pgxpool.
func NewHandle(dsn string, retryDelay time.Duration, logger *zap.Logger, dial DialFunc) *Handle {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dial == nil {
		dial = dialPostgres
	}
	return &Handle{dsn: dsn, retryDelay: retryDelay, dial: dial, logger: logger}
}

// Connect makes a single connection attempt unless already connected.
func (h *Handle) Connect(ctx context.Context) Status {
	h.connectMu.Lock()
	defer h.connectMu.Unlock()

	if st := h.Status(); st.State == StateConnected {
		return st
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	pool, err := h.dial(dialCtx, h.dsn)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.status = Status{State: StateFailed, Err: err, RetryAfter: h.retryDelay}
		h.logger.Warn("database connection failed", zap.Error(err), zap.Duration("retry_after", h.retryDelay))
		return h.status
	}

	h.pool = pool
	h.status = Status{State: StateConnected}
	h.logger.Info("database connected")
	return h.status
}

// Run retries Connect on the fixed delay until it succeeds or ctx ends.
func (h *Handle) Run(ctx context.Context) error {
	for {
		st := h.Connect(ctx)
		if st.State == StateConnected {
			return nil
		}

		timer := time.NewTimer(st.RetryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Status reports the latest connection outcome.
func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Close releases the pool and returns the handle to the disconnected state.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool != nil {
		h.pool.Close()
		h.pool = nil
	}
	h.status = Status{State: StateDisconnected}
}

func (h *Handle) current() Pool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pool
}

// Query implements the repository pool contract.
func (h *Handle) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	pool := h.current()
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool.Query(ctx, sql, args...)
}

// QueryRow implements the repository pool contract.
func (h *Handle) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	pool := h.current()
	if pool == nil {
		return errRow{err: ErrNotConnected}
	}
	return pool.QueryRow(ctx, sql, args...)
}

// Exec implements the repository pool contract.
func (h *Handle) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	pool := h.current()
	if pool == nil {
		return pgconn.CommandTag{}, ErrNotConnected
	}
	return pool.Exec(ctx, sql, args...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func dialPostgres(ctx context.Context, dsn string) (Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN must not be empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
