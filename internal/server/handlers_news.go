package server

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/vector76/news_server/internal/auth"
	"github.com/vector76/news_server/internal/forms"
	"github.com/vector76/news_server/internal/logging"
	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

// newsDetail is an article with its comments, oldest first.
type newsDetail struct {
	model.News
	Comments []model.Comment `json:"comments"`
	HTML     template.HTML   `json:"-"`
}

func (s *Server) loadDetail(r *http.Request, id int64) (newsDetail, error) {
	n, err := s.Store.GetNews(r.Context(), id)
	if err != nil {
		return newsDetail{}, err
	}
	comments, err := s.Store.Comments(r.Context(), id)
	if err != nil {
		return newsDetail{}, err
	}
	return newsDetail{News: n, Comments: comments, HTML: renderMarkdown(n.Text)}, nil
}

// handleHome handles GET /.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	news, err := s.Store.ListNews(r.Context(), store.ListOptions{Limit: s.config.NewsCountOnHomePage})
	if err != nil {
		s.storeError(w, r, err)
		return
	}

	ctx := newContext(r)
	ctx["object_list"] = news
	s.render(w, r, http.StatusOK, homeTmpl, ctx)
}

// handleDetail handles GET /news/{id}/. The comment form is only offered
// to logged-in users.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	detail, err := s.loadDetail(r, id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}

	ctx := newContext(r)
	ctx["news"] = detail
	if auth.UserFrom(r.Context()) != nil {
		ctx["form"] = &forms.CommentForm{Errors: forms.Errors{}}
	}
	s.render(w, r, http.StatusOK, detailTmpl, ctx)
}

// handleCreateComment handles POST /news/{id}/.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, auth.LoginRedirect(URL("users:login"), r.URL.RequestURI()), http.StatusFound)
		return
	}

	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	if _, err := s.Store.GetNews(r.Context(), id); err != nil {
		s.storeError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form := forms.NewCommentForm(r.PostForm)
	if !form.Validate(s.filter) {
		commentRejections.WithLabelValues(rejectionReason(form)).Inc()
		detail, err := s.loadDetail(r, id)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		ctx := newContext(r)
		ctx["news"] = detail
		ctx["form"] = form
		s.render(w, r, http.StatusOK, detailTmpl, ctx)
		return
	}

	c, err := s.Store.CreateComment(r.Context(), model.NewComment(id, *user, form.Text))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	commentsCreated.Inc()
	logging.FromContext(r.Context()).Info("comment created",
		slog.Int64("comment_id", c.ID),
		slog.Int64("news_id", id),
		slog.Int64("author_id", user.ID))

	http.Redirect(w, r, commentsURL(id), http.StatusFound)
}

// rejectionReason labels a failed comment form for metrics.
func rejectionReason(form *forms.CommentForm) string {
	if form.Errors.Has("text", forms.Warning) {
		return "bad_words"
	}
	return "invalid"
}
