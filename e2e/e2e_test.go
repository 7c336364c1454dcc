package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vector76/news_server/internal/cli"
	"github.com/vector76/news_server/internal/forms"
	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/server"
	"github.com/vector76/news_server/internal/store"
)

const testSecret = "e2e-test-secret"

// run executes a CLI command in a clean environment and returns stdout.
func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return buf.String()
}

// seed publishes an article with the CLI and returns the data file.
func seed(t *testing.T) (string, model.News) {
	t.Helper()
	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
	t.Setenv("NS_DATA_FILE", "")
	t.Setenv("NS_DATABASE_DRIVER", "")

	data := filepath.Join(dir, "news.json")
	out := run(t, "--data-file", data, "news", "add", "Заголовок", "--text", "Текст")
	var n model.News
	if err := json.Unmarshal([]byte(out), &n); err != nil {
		t.Fatalf("parse news: %v\noutput: %s", err, out)
	}
	return data, n
}

func startServer(t *testing.T, data string) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.Load(data)
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	srv, err := server.New(server.Config{Secret: testSecret}, s)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts, s
}

// browser is an HTTP client that keeps cookies and does not follow
// redirects, so each step can check the Location header.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{t: t, base: base, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) get(path string) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	return readResponse(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	return readResponse(b.t, resp)
}

func readResponse(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func expect(t *testing.T, step string, gotCode int, gotLoc string, wantCode int, wantLoc string) {
	t.Helper()
	if gotCode != wantCode {
		t.Fatalf("%s: status = %d, want %d", step, gotCode, wantCode)
	}
	if wantLoc != "" && gotLoc != wantLoc {
		t.Fatalf("%s: Location = %q, want %q", step, gotLoc, wantLoc)
	}
}

// TestCommentLifecycle walks a visitor through signup, login, commenting,
// editing, deleting and logout against a real server.
func TestCommentLifecycle(t *testing.T) {
	data, news := seed(t)
	ts, st := startServer(t, data)
	detail := server.URL("news:detail", news.ID)

	alice := newBrowser(t, ts.URL)

	// 1. Anonymous visitors can read but not comment
	code, _, body := alice.get(detail)
	expect(t, "anonymous detail", code, "", http.StatusOK, "")
	if strings.Contains(body, `name="text"`) {
		t.Error("anonymous detail page shows the comment form")
	}
	code, loc, _ := alice.post(detail, url.Values{"text": {"Новый комментарий"}})
	expect(t, "anonymous comment", code, loc, http.StatusFound, "/auth/login/?next="+detail)

	// 2. Sign up and log in
	code, loc, _ = alice.post("/auth/signup/", url.Values{
		"username": {"alice"}, "password1": {"wonderland"}, "password2": {"wonderland"},
	})
	expect(t, "signup", code, loc, http.StatusFound, "/auth/login/")

	code, loc, _ = alice.post("/auth/login/", url.Values{
		"username": {"alice"}, "password": {"wonderland"}, "next": {detail},
	})
	expect(t, "login", code, loc, http.StatusFound, detail)

	// 3. Post a comment
	code, loc, _ = alice.post(detail, url.Values{"text": {"Новый комментарий"}})
	expect(t, "comment", code, loc, http.StatusFound, detail+"#comments")

	_, _, body = alice.get(detail)
	if !strings.Contains(body, "Новый комментарий") {
		t.Fatal("detail page does not show the new comment")
	}
	comments := st.AllComments()
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	comment := comments[0]

	// 4. Bad words are rejected with a warning
	code, _, body = alice.post(detail, url.Values{"text": {"Какой-то текст, редиска, еще текст"}})
	expect(t, "bad words", code, "", http.StatusOK, "")
	if !strings.Contains(body, forms.Warning) {
		t.Error("bad words page does not show the warning")
	}
	if got := len(st.AllComments()); got != 1 {
		t.Errorf("comment count = %d after rejected comment", got)
	}

	// 5. Another user cannot touch the comment
	bob := newBrowser(t, ts.URL)
	bob.post("/auth/signup/", url.Values{"username": {"bob"}, "password1": {"builder"}, "password2": {"builder"}})
	bob.post("/auth/login/", url.Values{"username": {"bob"}, "password": {"builder"}})
	code, _, _ = bob.get(server.URL("news:edit", comment.ID))
	expect(t, "bob edit page", code, "", http.StatusNotFound, "")
	code, _, _ = bob.post(server.URL("news:delete", comment.ID), url.Values{})
	expect(t, "bob delete", code, "", http.StatusNotFound, "")

	// 6. The author edits and then deletes it
	code, loc, _ = alice.post(server.URL("news:edit", comment.ID), url.Values{"text": {"Исправленный комментарий"}})
	expect(t, "edit", code, loc, http.StatusFound, detail+"#comments")
	if c, _ := st.GetComment(t.Context(), comment.ID); c.Text != "Исправленный комментарий" {
		t.Errorf("edited text = %q", c.Text)
	}

	code, loc, _ = alice.post(server.URL("news:delete", comment.ID), url.Values{})
	expect(t, "delete", code, loc, http.StatusFound, detail+"#comments")
	if got := len(st.AllComments()); got != 0 {
		t.Errorf("comment count = %d after delete", got)
	}

	// 7. Logging out drops the session
	code, _, _ = alice.post("/auth/logout/", url.Values{})
	expect(t, "logout", code, "", http.StatusOK, "")
	edit := server.URL("news:edit", comment.ID)
	code, loc, _ = alice.get(edit)
	expect(t, "edit after logout", code, loc, http.StatusFound, "/auth/login/?next="+edit)
}

// TestHeadlinesAgainstServer reads the home listing through the CLI client.
func TestHeadlinesAgainstServer(t *testing.T) {
	data, _ := seed(t)
	ts, _ := startServer(t, data)

	out := run(t, "headlines", "--url", ts.URL, "--json")
	var rows []struct {
		ID           int64  `json:"id"`
		Title        string `json:"title"`
		CommentCount int    `json:"comment_count"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("parse: %v\noutput: %s", err, out)
	}
	if len(rows) != 1 || rows[0].Title != "Заголовок" || rows[0].CommentCount != 0 {
		t.Errorf("unexpected headlines: %+v", rows)
	}
}
