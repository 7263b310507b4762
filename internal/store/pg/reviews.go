package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookrack.org/internal/catalog"
	"bookrack.org/internal/ids"
)

// CreateReview checks both referents inside the transaction before writing
// the row, so a review never points at a missing reviewer or book.
func (s *Store) CreateReview(ctx context.Context, reviewerID, bookID string, r *catalog.Review) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	r.ReviewerID = reviewerID
	r.BookID = bookID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, `select 1 from reviewers where id=$1`, reviewerID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("reviewer %s: %w", reviewerID, catalog.ErrNotFound)
	}
	ok, err = exists(ctx, tx, `select 1 from books where id=$1`, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("book %s: %w", bookID, catalog.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		insert into reviews(id, book_id, reviewer_id, title, title_norm, body, rating)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, r.ID, bookID, reviewerID, r.Title, catalog.Normalize(r.Title), r.Text, r.Rating); err != nil {
		return mapUniqueViolation(err)
	}
	return tx.Commit()
}

func (s *Store) GetReview(ctx context.Context, id string) (catalog.Review, error) {
	var r catalog.Review
	err := s.db.QueryRowContext(ctx, `
		select id, book_id, reviewer_id, title, body, rating from reviews where id=$1
	`, id).Scan(&r.ID, &r.BookID, &r.ReviewerID, &r.Title, &r.Text, &r.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Review{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Review{}, err
	}
	return r, nil
}

func (s *Store) ListReviews(ctx context.Context) ([]catalog.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, book_id, reviewer_id, title, body, rating from reviews order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (s *Store) UpdateReview(ctx context.Context, r *catalog.Review) error {
	res, err := s.db.ExecContext(ctx, `
		update reviews set title=$2, title_norm=$3, body=$4, rating=$5 where id=$1
	`, r.ID, r.Title, catalog.Normalize(r.Title), r.Text, r.Rating)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from reviews where id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ReviewsOfBook(ctx context.Context, bookID string) ([]catalog.Review, error) {
	ok, err := exists(ctx, s.db, `select 1 from books where id=$1`, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, book_id, reviewer_id, title, body, rating
		from reviews where book_id=$1 order by id
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (s *Store) ReviewsByReviewer(ctx context.Context, reviewerID string) ([]catalog.Review, error) {
	ok, err := exists(ctx, s.db, `select 1 from reviewers where id=$1`, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, book_id, reviewer_id, title, body, rating
		from reviews where reviewer_id=$1 order by id
	`, reviewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (s *Store) DeleteReviewsByReviewer(ctx context.Context, reviewerID string) error {
	ok, err := exists(ctx, s.db, `select 1 from reviewers where id=$1`, reviewerID)
	if err != nil {
		return err
	}
	if !ok {
		return catalog.ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `delete from reviews where reviewer_id=$1`, reviewerID)
	return err
}

func scanReviews(rows *sql.Rows) ([]catalog.Review, error) {
	out := []catalog.Review{}
	for rows.Next() {
		var r catalog.Review
		if err := rows.Scan(&r.ID, &r.BookID, &r.ReviewerID, &r.Title, &r.Text, &r.Rating); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
