package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"clubdash/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is the WARN threshold unless CLUBDASH_SLOW_QUERY_MS says otherwise.
const DefaultSlowQuery = 50 * time.Millisecond

var slowQuery = sync.OnceValue(func() time.Duration {
	if n, err := strconv.Atoi(os.Getenv("CLUBDASH_SLOW_QUERY_MS")); err == nil && n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return DefaultSlowQuery
})

// TimedDB times every statement. Slow ones are logged at WARN and all of
// them go to the perf collector under their QueryLabel.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	slow      time.Duration
}

// NewTimedDB wraps db. A nil collector only logs.
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	return &TimedDB{db: db, collector: collector, slow: slowQuery()}
}

// QueryLabel reduces a statement to "VERB table" so timings group by shape
// rather than by argument values. Unknown shapes fall back to the verb alone.
func QueryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "EMPTY"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT", "REPLACE":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + trimIdent(fields[1])
		}
		return verb
	default:
		return verb
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) && i+1 < len(fields) {
			return verb + " " + trimIdent(fields[i+1])
		}
	}
	return verb
}

func trimIdent(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "\"`;,")
}

func (t *TimedDB) observe(ctx context.Context, label string, start time.Time) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	level, msg := slog.LevelDebug, "query"
	if elapsed >= t.slow {
		level, msg = slog.LevelWarn, "slow_query"
	}
	slog.Log(ctx, level, msg, "query", label, "duration_ms", ms)

	if t.collector != nil {
		t.collector.Record(perf.Entry{Kind: perf.KindQuery, Path: label, DurationMs: ms, Timestamp: start})
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.observe(ctx, QueryLabel(query), time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.observe(ctx, QueryLabel(query), time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.observe(ctx, QueryLabel(query), time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}

// BeginTx times only the BEGIN; statements on the returned *sql.Tx are not
// instrumented.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	defer t.observe(ctx, "BEGIN", time.Now())
	return t.db.BeginTx(ctx, opts)
}
