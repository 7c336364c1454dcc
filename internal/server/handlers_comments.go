package server

import (
	"log/slog"
	"net/http"

	"github.com/vector76/news_server/internal/auth"
	"github.com/vector76/news_server/internal/forms"
	"github.com/vector76/news_server/internal/logging"
	"github.com/vector76/news_server/internal/model"
)

// ownedComment loads the {id} comment for the current user. Missing
// comments and comments written by someone else both yield a 404, so
// non-owners learn nothing beyond the status. It reports false when a
// response has already been written.
func (s *Server) ownedComment(w http.ResponseWriter, r *http.Request) (model.Comment, bool) {
	id, ok := idParam(r)
	if !ok {
		s.notFound(w, r)
		return model.Comment{}, false
	}
	c, err := s.Store.GetComment(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return model.Comment{}, false
	}
	if !c.OwnedBy(auth.UserFrom(r.Context())) {
		s.notFound(w, r)
		return model.Comment{}, false
	}
	return c, true
}

// handleEditComment handles GET and POST /edit_comment/{id}/.
func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.ownedComment(w, r)
	if !ok {
		return
	}

	form := &forms.CommentForm{Text: c.Text, Errors: forms.Errors{}}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}
		form = forms.NewCommentForm(r.PostForm)
		if form.Validate(s.filter) {
			if _, err := s.Store.UpdateComment(r.Context(), c.ID, form.Text); err != nil {
				s.storeError(w, r, err)
				return
			}
			logging.FromContext(r.Context()).Info("comment updated", slog.Int64("comment_id", c.ID))
			http.Redirect(w, r, commentsURL(c.NewsID), http.StatusFound)
			return
		}
		commentRejections.WithLabelValues(rejectionReason(form)).Inc()
	}

	ctx := newContext(r)
	ctx["comment"] = c
	ctx["form"] = form
	s.render(w, r, http.StatusOK, editTmpl, ctx)
}

// handleDeleteComment handles GET (confirmation page), POST and DELETE
// /delete_comment/{id}/.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.ownedComment(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		ctx := newContext(r)
		ctx["comment"] = c
		s.render(w, r, http.StatusOK, deleteTmpl, ctx)
		return
	}

	if _, err := s.Store.DeleteComment(r.Context(), c.ID); err != nil {
		s.storeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("comment deleted", slog.Int64("comment_id", c.ID))
	http.Redirect(w, r, commentsURL(c.NewsID), http.StatusFound)
}
