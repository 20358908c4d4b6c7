package catalog

import (
	"context"
	"errors"
)

// Both map to 404 at the HTTP layer, but a missing book and a missing
// review are distinct conditions and stay distinguishable.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrReviewNotFound = errors.New("review not found")
)

type Book struct {
	Author  string            `json:"author"`
	Title   string            `json:"title"`
	Reviews map[string]string `json:"reviews"`
}

// ListedBook is a catalog entry with its key, used for dumps and searches.
type ListedBook struct {
	ISBN    string            `json:"isbn"`
	Author  string            `json:"author"`
	Title   string            `json:"title"`
	Reviews map[string]string `json:"reviews"`
}

// Store is the book catalog. The book set is fixed after seeding; the
// per-book reviews maps are the only mutable state, keyed by username with
// at most one review per user per book.
type Store interface {
	All(ctx context.Context) ([]ListedBook, error)
	Get(ctx context.Context, isbn string) (Book, bool, error)
	ByAuthor(ctx context.Context, author string) ([]ListedBook, error)
	ByTitle(ctx context.Context, title string) ([]ListedBook, error)
	Reviews(ctx context.Context, isbn string) (map[string]string, bool, error)
	UpsertReview(ctx context.Context, isbn, username, text string) (map[string]string, error)
	DeleteReview(ctx context.Context, isbn, username string) (map[string]string, error)
	Ping(ctx context.Context) error
}
