package sqlstore

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      VARCHAR(150) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    date_joined   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS news (
    id         BIGSERIAL PRIMARY KEY,
    title      VARCHAR(250) NOT NULL,
    text       TEXT NOT NULL,
    date       DATE NOT NULL DEFAULT CURRENT_DATE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS comments (
    id        BIGSERIAL PRIMARY KEY,
    news_id   BIGINT NOT NULL REFERENCES news(id) ON DELETE CASCADE,
    author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    text      TEXT NOT NULL,
    created   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_news_date ON news(date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_news_created ON comments(news_id, created)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            BIGINT AUTO_INCREMENT PRIMARY KEY,
    username      VARCHAR(150) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    date_joined   DATETIME(6) NOT NULL
) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS news (
    id         BIGINT AUTO_INCREMENT PRIMARY KEY,
    title      VARCHAR(250) NOT NULL,
    text       TEXT NOT NULL,
    date       DATE NOT NULL,
    created_at DATETIME(6) NOT NULL,
    INDEX idx_news_date (date)
) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS comments (
    id        BIGINT AUTO_INCREMENT PRIMARY KEY,
    news_id   BIGINT NOT NULL,
    author_id BIGINT NOT NULL,
    text      TEXT NOT NULL,
    created   DATETIME(6) NOT NULL,
    INDEX idx_comments_news_created (news_id, created),
    FOREIGN KEY (news_id) REFERENCES news(id) ON DELETE CASCADE,
    FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
) DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.dialect == MySQL {
		schema = mysqlSchema
	}
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
