package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestMemStore_AllIsDeterministic(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	books, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(books) != 10 {
		t.Fatalf("len=%d want=10", len(books))
	}

	again, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	for i := range books {
		if books[i].ISBN != again[i].ISBN {
			t.Fatalf("order not deterministic: %q vs %q at %d", books[i].ISBN, again[i].ISBN, i)
		}
	}
	for i := 1; i < len(books); i++ {
		if books[i-1].ISBN >= books[i].ISBN {
			t.Fatalf("not ISBN-sorted: %q >= %q", books[i-1].ISBN, books[i].ISBN)
		}
	}
}

func TestMemStore_Get(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	b, ok, err := s.Get(ctx, "1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if b.Author != "Chinua Achebe" || b.Title != "Things Fall Apart" {
		t.Fatalf("book=%+v", b)
	}
	if b.Reviews == nil || len(b.Reviews) != 0 {
		t.Fatalf("reviews=%v want empty map", b.Reviews)
	}

	_, ok, err = s.Get(ctx, "404")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("unknown isbn found")
	}
}

func TestMemStore_ByAuthor(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	exact, err := s.ByAuthor(ctx, "Chinua Achebe")
	if err != nil {
		t.Fatalf("by author: %v", err)
	}
	lower, err := s.ByAuthor(ctx, "chinua achebe")
	if err != nil {
		t.Fatalf("by author: %v", err)
	}

	if len(exact) != 1 || len(lower) != 1 {
		t.Fatalf("len exact=%d lower=%d want 1/1", len(exact), len(lower))
	}
	if exact[0].ISBN != lower[0].ISBN {
		t.Fatalf("case-insensitive match diverged: %q vs %q", exact[0].ISBN, lower[0].ISBN)
	}

	// Exact match, not substring.
	sub, err := s.ByAuthor(ctx, "Chinua")
	if err != nil {
		t.Fatalf("by author: %v", err)
	}
	if len(sub) != 0 {
		t.Fatalf("substring matched: %v", sub)
	}

	// Several books share an author.
	unknown, err := s.ByAuthor(ctx, "unknown")
	if err != nil {
		t.Fatalf("by author: %v", err)
	}
	if len(unknown) != 4 {
		t.Fatalf("len=%d want=4", len(unknown))
	}
}

func TestMemStore_ByTitle(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	got, err := s.ByTitle(ctx, "things fall apart")
	if err != nil {
		t.Fatalf("by title: %v", err)
	}
	if len(got) != 1 || got[0].ISBN != "1" {
		t.Fatalf("got=%v", got)
	}

	none, err := s.ByTitle(ctx, "Things Fall")
	if err != nil {
		t.Fatalf("by title: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("substring matched: %v", none)
	}
}

func TestMemStore_UpsertReplacesOwnReview(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	reviews, err := s.UpsertReview(ctx, "1", "alice", "great book")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if reviews["alice"] != "great book" || len(reviews) != 1 {
		t.Fatalf("reviews=%v", reviews)
	}

	reviews, err = s.UpsertReview(ctx, "1", "alice", "changed")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if reviews["alice"] != "changed" || len(reviews) != 1 {
		t.Fatalf("replace produced %v", reviews)
	}

	// A second user gets a distinct entry on the same book.
	reviews, err = s.UpsertReview(ctx, "1", "bob", "fine")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("reviews=%v", reviews)
	}

	// No cross-book effect.
	other, ok, err := s.Reviews(ctx, "2")
	if err != nil || !ok {
		t.Fatalf("reviews: ok=%v err=%v", ok, err)
	}
	if len(other) != 0 {
		t.Fatalf("cross-book leak: %v", other)
	}
}

func TestMemStore_DeleteReview(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if _, err := s.UpsertReview(ctx, "1", "alice", "great book"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	reviews, err := s.DeleteReview(ctx, "1", "alice")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(reviews) != 0 {
		t.Fatalf("reviews=%v want empty", reviews)
	}

	// A second delete is a review-level miss, not a book-level one.
	if _, err := s.DeleteReview(ctx, "1", "alice"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("err=%v want=%v", err, ErrReviewNotFound)
	}
}

func TestMemStore_UnknownBook(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if _, err := s.UpsertReview(ctx, "404", "alice", "text"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("upsert err=%v want=%v", err, ErrBookNotFound)
	}
	if _, err := s.DeleteReview(ctx, "404", "alice"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("delete err=%v want=%v", err, ErrBookNotFound)
	}
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if _, err := s.UpsertReview(ctx, "1", "alice", "great book"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	reviews, _, err := s.Reviews(ctx, "1")
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	reviews["mallory"] = "injected"

	clean, _, err := s.Reviews(ctx, "1")
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if _, ok := clean["mallory"]; ok {
		t.Fatalf("caller mutation leaked into store")
	}
}
