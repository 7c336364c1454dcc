package store

import (
	"context"

	"github.com/vector76/news_server/internal/model"
)

// Repository is the persistence surface the web server and CLI depend on.
// Store (JSON file) and sqlstore.Store (database/sql) both implement it.
type Repository interface {
	CreateNews(ctx context.Context, n model.News) (model.News, error)
	GetNews(ctx context.Context, id int64) (model.News, error)
	ListNews(ctx context.Context, opts ListOptions) ([]NewsSummary, error)

	CreateComment(ctx context.Context, c model.Comment) (model.Comment, error)
	GetComment(ctx context.Context, id int64) (model.Comment, error)
	UpdateComment(ctx context.Context, id int64, text string) (model.Comment, error)
	DeleteComment(ctx context.Context, id int64) (model.Comment, error)
	Comments(ctx context.Context, newsID int64) ([]model.Comment, error)

	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)

	Close() error
}

var _ Repository = (*Store)(nil)
