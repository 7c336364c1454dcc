package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

/* ─────────────────────────── helpers ─────────────────────────── */

func newMock(t *testing.T, d Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return New(db, d), mock
}

var (
	day = time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	now = time.Date(2025, 7, 19, 12, 30, 0, 0, time.UTC)
)

func newsRows(ns ...model.News) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "text", "date", "created_at"})
	for _, n := range ns {
		rows.AddRow(n.ID, n.Title, n.Text, n.Date, n.CreatedAt)
	}
	return rows
}

func userRows(us ...model.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "date_joined"})
	for _, u := range us {
		rows.AddRow(u.ID, u.Username, u.PasswordHash, u.DateJoined)
	}
	return rows
}

func commentRows(cs ...model.Comment) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "news_id", "author_id", "username", "text", "created"})
	for _, c := range cs {
		rows.AddRow(c.ID, c.NewsID, c.AuthorID, c.Author, c.Text, c.Created)
	}
	return rows
}

/* ─────────────────────────── dialect ─────────────────────────── */

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    Dialect
		wantErr bool
	}{
		{"pgx", Postgres, false},
		{"postgres", Postgres, false},
		{"mysql", MySQL, false},
		{"sqlite3", 0, true},
	}
	for _, tt := range tests {
		got, err := DialectFor(tt.driver)
		if (err != nil) != tt.wantErr {
			t.Errorf("DialectFor(%q) err=%v, wantErr=%v", tt.driver, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("DialectFor(%q) = %v, want %v", tt.driver, got, tt.want)
		}
	}
}

func TestRebind(t *testing.T) {
	pg := New(nil, Postgres)
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	my := New(nil, MySQL)
	if got := my.rebind("a = ? AND b = ?"); got != "a = ? AND b = ?" {
		t.Errorf("mysql rebind = %q", got)
	}
}

/* ─────────────────────────── news ─────────────────────────── */

func TestCreateNews_Postgres(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO news (title, text, date, created_at) VALUES ($1, $2, $3, $4) RETURNING id`)).
		WithArgs("Заголовок", "Текст", day, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	n := model.NewNews("Заголовок", "Текст")
	n.Date = day
	got, err := s.CreateNews(context.Background(), n)
	if err != nil {
		t.Fatalf("CreateNews err=%v", err)
	}
	if got.ID != 1 {
		t.Errorf("expected ID 1, got %d", got.ID)
	}
}

func TestCreateNews_MySQL(t *testing.T) {
	s, mock := newMock(t, MySQL)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO news (title, text, date, created_at) VALUES (?, ?, ?, ?)`)).
		WithArgs("Заголовок", "Текст", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	got, err := s.CreateNews(context.Background(), model.NewNews("Заголовок", "Текст"))
	if err != nil {
		t.Fatalf("CreateNews err=%v", err)
	}
	if got.ID != 7 {
		t.Errorf("expected ID 7, got %d", got.ID)
	}
}

func TestGetNews(t *testing.T) {
	s, mock := newMock(t, Postgres)

	want := model.News{ID: 1, Title: "Заголовок", Text: "Текст", Date: day, CreatedAt: now}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM news WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(newsRows(want))

	got, err := s.GetNews(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetNews err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGetNews_NotFound(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM news WHERE id`)).
		WithArgs(int64(9)).
		WillReturnRows(newsRows())

	_, err := s.GetNews(context.Background(), 9)
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListNews(t *testing.T) {
	s, mock := newMock(t, Postgres)

	rows := sqlmock.NewRows([]string{"id", "title", "text", "date", "created_at", "count"}).
		AddRow(int64(2), "Новость 0", "Просто текст.", day, now, 3).
		AddRow(int64(1), "Новость 1", "Просто текст.", day.AddDate(0, 0, -1), now, 0)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY n.date DESC, n.id DESC`)).
		WithArgs(10, 0).
		WillReturnRows(rows)

	got, err := s.ListNews(context.Background(), store.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListNews err=%v", err)
	}
	want := []store.NewsSummary{
		{News: model.News{ID: 2, Title: "Новость 0", Text: "Просто текст.", Date: day, CreatedAt: now}, CommentCount: 3},
		{News: model.News{ID: 1, Title: "Новость 1", Text: "Просто текст.", Date: day.AddDate(0, 0, -1), CreatedAt: now}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestListNews_NoLimitUsesLargeWindow(t *testing.T) {
	s, mock := newMock(t, MySQL)

	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT ? OFFSET ?`)).
		WithArgs(2147483647, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "text", "date", "created_at", "count"}))

	got, err := s.ListNews(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListNews err=%v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

/* ─────────────────────────── comments ─────────────────────────── */

func TestComments_OrderedByDatabase(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM news WHERE id`)).
		WithArgs(int64(1)).
		WillReturnRows(newsRows(model.News{ID: 1, Title: "Заголовок", Date: day, CreatedAt: now}))
	want := []model.Comment{
		{ID: 5, NewsID: 1, AuthorID: 2, Author: "Автор", Text: "first", Created: now},
		{ID: 3, NewsID: 1, AuthorID: 2, Author: "Автор", Text: "second", Created: now.Add(time.Hour)},
	}
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY c.created ASC, c.id ASC`)).
		WithArgs(int64(1)).
		WillReturnRows(commentRows(want...))

	got, err := s.Comments(context.Background(), 1)
	if err != nil {
		t.Fatalf("Comments err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateComment(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM news WHERE id`)).
		WithArgs(int64(1)).
		WillReturnRows(newsRows(model.News{ID: 1, Date: day, CreatedAt: now}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(userRows(model.User{ID: 2, Username: "Автор", PasswordHash: "h", DateJoined: now}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO comments (news_id, author_id, text, created) VALUES ($1, $2, $3, $4) RETURNING id`)).
		WithArgs(int64(1), int64(2), "Новый комментарий", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	got, err := s.CreateComment(context.Background(), model.Comment{NewsID: 1, AuthorID: 2, Text: "Новый комментарий"})
	if err != nil {
		t.Fatalf("CreateComment err=%v", err)
	}
	if got.ID != 10 || got.Author != "Автор" || got.Created.IsZero() {
		t.Errorf("unexpected comment: %+v", got)
	}
}

func TestCreateComment_UnknownNews(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM news WHERE id`)).
		WithArgs(int64(1)).
		WillReturnRows(newsRows())

	_, err := s.CreateComment(context.Background(), model.Comment{NewsID: 1, AuthorID: 2, Text: "x"})
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateComment(t *testing.T) {
	s, mock := newMock(t, MySQL)

	orig := model.Comment{ID: 3, NewsID: 1, AuthorID: 2, Author: "Автор", Text: "Текст комментария", Created: now}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(commentRows(orig))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE comments SET text = ? WHERE id = ?`)).
		WithArgs("Новый комментарий", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.UpdateComment(context.Background(), 3, "Новый комментарий")
	if err != nil {
		t.Fatalf("UpdateComment err=%v", err)
	}
	want := orig
	want.Text = "Новый комментарий"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteComment(t *testing.T) {
	s, mock := newMock(t, Postgres)

	orig := model.Comment{ID: 3, NewsID: 1, AuthorID: 2, Author: "Автор", Text: "x", Created: now}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(commentRows(orig))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM comments WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.DeleteComment(context.Background(), 3)
	if err != nil {
		t.Fatalf("DeleteComment err=%v", err)
	}
	if got.ID != 3 {
		t.Errorf("expected deleted comment 3, got %d", got.ID)
	}
}

func TestDeleteComment_NotFoundSkipsDelete(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(commentRows())

	_, err := s.DeleteComment(context.Background(), 3)
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

/* ─────────────────────────── users ─────────────────────────── */

func TestCreateUser(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("Читатель").
		WillReturnRows(userRows())
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password_hash, date_joined) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("Читатель", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	got, err := s.CreateUser(context.Background(), model.NewUser("Читатель", "hash"))
	if err != nil {
		t.Fatalf("CreateUser err=%v", err)
	}
	if got.ID != 4 {
		t.Errorf("expected ID 4, got %d", got.ID)
	}
}

func TestCreateUser_Conflict(t *testing.T) {
	s, mock := newMock(t, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("Автор").
		WillReturnRows(userRows(model.User{ID: 1, Username: "Автор", PasswordHash: "h", DateJoined: now}))

	_, err := s.CreateUser(context.Background(), model.NewUser("Автор", "hash"))
	var conflict *store.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

/* ─────────────────────────── migrate ─────────────────────────── */

func TestMigrate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		dialect Dialect
		steps   int
	}{
		{"postgres", Postgres, len(postgresSchema)},
		{"mysql", MySQL, len(mysqlSchema)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMock(t, tc.dialect)
			for i := 0; i < tc.steps; i++ {
				mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
			}
			if err := s.Migrate(context.Background()); err != nil {
				t.Fatalf("Migrate err=%v", err)
			}
		})
	}
}

func TestMigrate_PropagatesError(t *testing.T) {
	s, mock := newMock(t, Postgres)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("boom"))

	if err := s.Migrate(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
