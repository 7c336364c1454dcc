// Package sqlstore implements store.Repository on database/sql. It speaks
// PostgreSQL through the pgx stdlib driver and MySQL through
// go-sql-driver/mysql.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

// Dialect selects placeholder style, DDL and insert-ID retrieval.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return 0, fmt.Errorf("unsupported database driver %q", driver)
}

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConnectionConfig returns the default pool settings.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// Store implements store.Repository on a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Repository = (*Store)(nil)

// New wraps an open database handle.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// Open connects with the named driver ("pgx" or "mysql"), applies pool
// settings, pings, and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, cfg ConnectionConfig, log *slog.Logger) (*Store, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if d == MySQL {
		// DATE and DATETIME columns must scan into time.Time.
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parsing mysql dsn: %w", err)
		}
		mc.ParseTime = true
		mc.Loc = time.UTC
		dsn = mc.FormatDSN()
		driver = "mysql"
	} else {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	s := New(db, d)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database connection established",
		slog.String("driver", driver),
		slog.Int("max_open_conns", cfg.MaxOpenConns))
	return s, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert runs an INSERT and returns the generated id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect == Postgres {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateNews inserts an article. The database assigns the ID; n.ID is
// ignored. A zero Date defaults to today.
func (s *Store) CreateNews(ctx context.Context, n model.News) (model.News, error) {
	if n.Date.IsZero() {
		n.Date = model.Today()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	id, err := s.insert(ctx,
		`INSERT INTO news (title, text, date, created_at) VALUES (?, ?, ?, ?)`,
		n.Title, n.Text, n.Date, n.CreatedAt)
	if err != nil {
		return model.News{}, fmt.Errorf("CreateNews: %w", err)
	}
	n.ID = id
	return n, nil
}

// GetNews returns an article by ID.
func (s *Store) GetNews(ctx context.Context, id int64) (model.News, error) {
	const query = `SELECT id, title, text, date, created_at FROM news WHERE id = ?`

	var n model.News
	err := s.db.QueryRowContext(ctx, s.rebind(query), id).
		Scan(&n.ID, &n.Title, &n.Text, &n.Date, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.News{}, &store.NotFoundError{Message: fmt.Sprintf("news %d not found", id)}
	}
	if err != nil {
		return model.News{}, fmt.Errorf("GetNews: %w", err)
	}
	return n, nil
}

// ListNews returns articles newest first with their comment counts.
func (s *Store) ListNews(ctx context.Context, opts store.ListOptions) ([]store.NewsSummary, error) {
	const query = `
SELECT n.id, n.title, n.text, n.date, n.created_at, COUNT(c.id)
FROM news n
LEFT JOIN comments c ON c.news_id = n.id
GROUP BY n.id, n.title, n.text, n.date, n.created_at
ORDER BY n.date DESC, n.id DESC
LIMIT ? OFFSET ?`

	limit := opts.Limit
	if limit < 1 {
		limit = math.MaxInt32
	}
	offset := max(opts.Offset, 0)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListNews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []store.NewsSummary{}
	for rows.Next() {
		var ns store.NewsSummary
		if err := rows.Scan(&ns.ID, &ns.Title, &ns.Text, &ns.Date, &ns.CreatedAt, &ns.CommentCount); err != nil {
			return nil, fmt.Errorf("ListNews: scan: %w", err)
		}
		result = append(result, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListNews: rows: %w", err)
	}
	return result, nil
}
