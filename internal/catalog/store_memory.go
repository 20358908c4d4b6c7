package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore holds the catalog in memory for the lifetime of the process.
// One lock covers the book map and every reviews sub-map.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]Book
}

// NewMemStore seeds the classic ten-book catalog.
func NewMemStore() *MemStore {
	return NewMemStoreFrom(map[string]Book{
		"1":  {Author: "Chinua Achebe", Title: "Things Fall Apart"},
		"2":  {Author: "Hans Christian Andersen", Title: "Fairy tales"},
		"3":  {Author: "Dante Alighieri", Title: "The Divine Comedy"},
		"4":  {Author: "Unknown", Title: "The Epic Of Gilgamesh"},
		"5":  {Author: "Unknown", Title: "The Book Of Job"},
		"6":  {Author: "Unknown", Title: "One Thousand and One Nights"},
		"7":  {Author: "Unknown", Title: "Njál's Saga"},
		"8":  {Author: "Jane Austen", Title: "Pride and Prejudice"},
		"9":  {Author: "Honoré de Balzac", Title: "Le Père Goriot"},
		"10": {Author: "Samuel Beckett", Title: "Molloy, Malone Dies, The Unnamable, the trilogy"},
	})
}

func NewMemStoreFrom(seed map[string]Book) *MemStore {
	s := &MemStore{m: make(map[string]Book, len(seed))}
	for isbn, b := range seed {
		b.Reviews = copyReviews(b.Reviews)
		if b.Reviews == nil {
			b.Reviews = map[string]string{}
		}
		s.m[isbn] = b
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) All(ctx context.Context) ([]ListedBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(Book) bool { return true }), nil
}

func (s *MemStore) Get(ctx context.Context, isbn string) (Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.m[isbn]
	if !ok {
		return Book{}, false, nil
	}
	b.Reviews = copyReviews(b.Reviews)
	return b, true, nil
}

func (s *MemStore) ByAuthor(ctx context.Context, author string) ([]ListedBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b Book) bool { return strings.EqualFold(b.Author, author) }), nil
}

func (s *MemStore) ByTitle(ctx context.Context, title string) ([]ListedBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b Book) bool { return strings.EqualFold(b.Title, title) }), nil
}

func (s *MemStore) Reviews(ctx context.Context, isbn string) (map[string]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.m[isbn]
	if !ok {
		return nil, false, nil
	}
	return copyReviews(b.Reviews), true, nil
}

func (s *MemStore) UpsertReview(ctx context.Context, isbn, username, text string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.m[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}

	b.Reviews[username] = text
	return copyReviews(b.Reviews), nil
}

func (s *MemStore) DeleteReview(ctx context.Context, isbn, username string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.m[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}
	if _, ok := b.Reviews[username]; !ok {
		return nil, ErrReviewNotFound
	}

	delete(b.Reviews, username)
	return copyReviews(b.Reviews), nil
}

// collect is called with the lock held; results are ISBN-sorted so dumps
// and searches come back in a deterministic order.
func (s *MemStore) collect(match func(Book) bool) []ListedBook {
	out := make([]ListedBook, 0, len(s.m))
	for isbn, b := range s.m {
		if !match(b) {
			continue
		}
		out = append(out, ListedBook{
			ISBN:    isbn,
			Author:  b.Author,
			Title:   b.Title,
			Reviews: copyReviews(b.Reviews),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out
}

func copyReviews(reviews map[string]string) map[string]string {
	if reviews == nil {
		return nil
	}
	out := make(map[string]string, len(reviews))
	for user, text := range reviews {
		out[user] = text
	}
	return out
}
