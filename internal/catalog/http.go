package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BookStack/internal/identity"
	"BookStack/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger

	// Auth guards the review mutation routes. It must run before any
	// store access, and the mutation key is always the verified identity.
	Auth func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/isbn/{isbn}", s.getByISBN)
	r.Get("/author/{author}", s.byAuthor)
	r.Get("/title/{title}", s.byTitle)
	r.Get("/{isbn}/reviews", s.reviews)

	r.Group(func(pr chi.Router) {
		pr.Use(s.Auth)
		pr.Put("/{isbn}/reviews", s.upsertReview)
		pr.Delete("/{isbn}/reviews", s.deleteReview)
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	books, err := s.Store.All(r.Context())
	if err != nil {
		s.storeError(w, r, "list books", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) getByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	b, ok, err := s.Store.Get(r.Context(), isbn)
	if err != nil {
		s.storeError(w, r, "get book", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "book not found", map[string]any{"isbn": isbn})
		return
	}
	kit.WriteJSON(w, http.StatusOK, b)
}

func (s *Server) byAuthor(w http.ResponseWriter, r *http.Request) {
	s.search(w, r, "author", chi.URLParam(r, "author"), s.Store.ByAuthor)
}

func (s *Server) byTitle(w http.ResponseWriter, r *http.Request) {
	s.search(w, r, "title", chi.URLParam(r, "title"), s.Store.ByTitle)
}

// search runs a case-insensitive exact-match query; an empty result set is
// reported as not found, matching the catalog contract.
func (s *Server) search(
	w http.ResponseWriter, r *http.Request,
	field, value string,
	query func(context.Context, string) ([]ListedBook, error),
) {
	books, err := query(r.Context(), value)
	if err != nil {
		s.storeError(w, r, "search books", err)
		return
	}
	if len(books) == 0 {
		kit.WriteError(w, r, http.StatusNotFound, "no books found", map[string]any{field: value})
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) reviews(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	reviews, ok, err := s.Store.Reviews(r.Context(), isbn)
	if err != nil {
		s.storeError(w, r, "get reviews", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "book not found", map[string]any{"isbn": isbn})
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) upsertReview(w http.ResponseWriter, r *http.Request) {
	u, ok := identity.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	isbn := chi.URLParam(r, "isbn")

	text := strings.TrimSpace(r.URL.Query().Get("review"))
	if text == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "review required as a query parameter (?review=...)", nil)
		return
	}

	reviews, err := s.Store.UpsertReview(r.Context(), isbn, u.Name, text)
	if errors.Is(err, ErrBookNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "book not found", map[string]any{"isbn": isbn})
		return
	}
	if err != nil {
		s.storeError(w, r, "upsert review", err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "review added/updated",
		"reviews": reviews,
	})
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	u, ok := identity.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	isbn := chi.URLParam(r, "isbn")

	reviews, err := s.Store.DeleteReview(r.Context(), isbn, u.Name)
	switch {
	case errors.Is(err, ErrBookNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "book not found", map[string]any{"isbn": isbn})
		return
	case errors.Is(err, ErrReviewNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "review by this user not found",
			map[string]any{"isbn": isbn, "username": u.Name})
		return
	case err != nil:
		s.storeError(w, r, "delete review", err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "review deleted",
		"reviews": reviews,
	})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if s.Log != nil {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
