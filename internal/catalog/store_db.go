package catalog

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore backs the catalog with books/reviews tables. Review upserts
// rely on the (isbn, username) primary key, which enforces the one review
// per user per book invariant.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) All(ctx context.Context) ([]ListedBook, error) {
	return s.listWhere(ctx, "", "")
}

func (s *PostgresStore) ByAuthor(ctx context.Context, author string) ([]ListedBook, error) {
	return s.listWhere(ctx, "WHERE lower(author) = lower($1)", author)
}

func (s *PostgresStore) ByTitle(ctx context.Context, title string) ([]ListedBook, error) {
	return s.listWhere(ctx, "WHERE lower(title) = lower($1)", title)
}

func (s *PostgresStore) listWhere(ctx context.Context, where, arg string) ([]ListedBook, error) {
	var out []ListedBook

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		query := `SELECT isbn, author, title FROM books ` + where + ` ORDER BY isbn ASC`

		var (
			rows *sql.Rows
			err  error
		)
		if where == "" {
			rows, err = s.db.QueryContext(ctx, query)
		} else {
			rows, err = s.db.QueryContext(ctx, query, arg)
		}
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]ListedBook, 0, 16)
		for rows.Next() {
			var b ListedBook
			if err := rows.Scan(&b.ISBN, &b.Author, &b.Title); err != nil {
				return err
			}
			out = append(out, b)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range out {
			reviews, err := s.reviewsFor(ctx, out[i].ISBN)
			if err != nil {
				return err
			}
			out[i].Reviews = reviews
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, isbn string) (Book, bool, error) {
	var b Book

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.db.QueryRowContext(ctx, `
			SELECT author, title FROM books WHERE isbn = $1
		`, isbn).Scan(&b.Author, &b.Title); err != nil {
			return err
		}

		reviews, err := s.reviewsFor(ctx, isbn)
		if err != nil {
			return err
		}
		b.Reviews = reviews
		return nil
	})

	if err == sql.ErrNoRows {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, err
	}
	return b, true, nil
}

func (s *PostgresStore) Reviews(ctx context.Context, isbn string) (map[string]string, bool, error) {
	var reviews map[string]string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.bookExists(ctx, isbn); err != nil {
			return err
		}

		var err error
		reviews, err = s.reviewsFor(ctx, isbn)
		return err
	})

	if err == ErrBookNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return reviews, true, nil
}

func (s *PostgresStore) UpsertReview(ctx context.Context, isbn, username, text string) (map[string]string, error) {
	var reviews map[string]string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.bookExists(ctx, isbn); err != nil {
			return err
		}

		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO reviews (isbn, username, review)
			VALUES ($1, $2, $3)
			ON CONFLICT (isbn, username) DO UPDATE SET review = EXCLUDED.review
		`, isbn, username, text); err != nil {
			return err
		}

		var err error
		reviews, err = s.reviewsFor(ctx, isbn)
		return err
	})

	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *PostgresStore) DeleteReview(ctx context.Context, isbn, username string) (map[string]string, error) {
	var reviews map[string]string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.bookExists(ctx, isbn); err != nil {
			return err
		}

		res, err := s.db.ExecContext(ctx, `
			DELETE FROM reviews WHERE isbn = $1 AND username = $2
		`, isbn, username)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrReviewNotFound
		}

		reviews, err = s.reviewsFor(ctx, isbn)
		return err
	})

	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *PostgresStore) bookExists(ctx context.Context, isbn string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM books WHERE isbn = $1`, isbn).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrBookNotFound
	}
	return err
}

func (s *PostgresStore) reviewsFor(ctx context.Context, isbn string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, review FROM reviews WHERE isbn = $1
	`, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make(map[string]string)
	for rows.Next() {
		var user, text string
		if err := rows.Scan(&user, &text); err != nil {
			return nil, err
		}
		reviews[user] = text
	}
	return reviews, rows.Err()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
