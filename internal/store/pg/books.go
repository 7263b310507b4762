package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookrack.org/internal/catalog"
	"bookrack.org/internal/ids"
	"bookrack.org/internal/page"
)

// CreateBook inserts the book plus both join rows atomically: either all
// three rows commit or none do. Missing referents surface as ErrNotFound
// before anything is written; the unique index on the normalized title turns
// concurrent duplicate creations into ErrConflict instead of a double insert.
func (s *Store) CreateBook(ctx context.Context, ownerID, categoryID string, b *catalog.Book) error {
	if b.ID == "" {
		b.ID = ids.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, `select 1 from owners where id=$1`, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("owner %s: %w", ownerID, catalog.ErrNotFound)
	}
	ok, err = exists(ctx, tx, `select 1 from categories where id=$1`, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %s: %w", categoryID, catalog.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		insert into books(id, title, title_norm, published_date)
		values ($1,$2,$3,$4)
	`, b.ID, b.Title, catalog.Normalize(b.Title), b.PublishedDate); err != nil {
		return mapUniqueViolation(err)
	}
	if _, err := tx.ExecContext(ctx, `
		insert into book_owners(book_id, owner_id) values ($1,$2)
	`, b.ID, ownerID); err != nil {
		return mapUniqueViolation(err)
	}
	if _, err := tx.ExecContext(ctx, `
		insert into book_categories(book_id, category_id) values ($1,$2)
	`, b.ID, categoryID); err != nil {
		return mapUniqueViolation(err)
	}

	return tx.Commit()
}

func (s *Store) GetBook(ctx context.Context, id string) (catalog.Book, error) {
	var b catalog.Book
	err := s.db.QueryRowContext(ctx, `
		select id, title, published_date from books where id=$1
	`, id).Scan(&b.ID, &b.Title, &b.PublishedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Book{}, err
	}
	return b, nil
}

// ListBooks pages through books in ascending id order. Metadata reflects the
// unfiltered total regardless of the requested page.
func (s *Store) ListBooks(ctx context.Context, pageNumber, pageSize int) ([]catalog.Book, page.Metadata, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from books`).Scan(&total); err != nil {
		return nil, page.Metadata{}, err
	}
	meta := page.NewMetadata(pageNumber, pageSize, total)

	rows, err := s.db.QueryContext(ctx, `
		select id, title, published_date from books
		order by id
		limit $1 offset $2
	`, meta.PageSize, (meta.CurrentPage-1)*meta.PageSize)
	if err != nil {
		return nil, page.Metadata{}, err
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, page.Metadata{}, err
	}
	return books, meta, nil
}

func (s *Store) UpdateBook(ctx context.Context, b *catalog.Book) error {
	res, err := s.db.ExecContext(ctx, `
		update books set title=$2, title_norm=$3, published_date=$4 where id=$1
	`, b.ID, b.Title, catalog.Normalize(b.Title), b.PublishedDate)
	if err != nil {
		return mapUniqueViolation(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeleteBook removes the book together with its join rows and reviews in one
// transaction.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from reviews where book_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `delete from book_owners where book_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `delete from book_categories where book_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from books where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return tx.Commit()
}

// BookRating aggregates the book's review ratings as exact sum/count terms.
func (s *Store) BookRating(ctx context.Context, bookID string) (catalog.Rating, error) {
	ok, err := exists(ctx, s.db, `select 1 from books where id=$1`, bookID)
	if err != nil {
		return catalog.Rating{}, err
	}
	if !ok {
		return catalog.Rating{}, catalog.ErrNotFound
	}
	var agg catalog.Rating
	err = s.db.QueryRowContext(ctx, `
		select coalesce(sum(rating), 0), count(*) from reviews where book_id=$1
	`, bookID).Scan(&agg.Sum, &agg.Count)
	if err != nil {
		return catalog.Rating{}, err
	}
	return agg, nil
}

func (s *Store) BooksByCategory(ctx context.Context, categoryID string) ([]catalog.Book, error) {
	ok, err := exists(ctx, s.db, `select 1 from categories where id=$1`, categoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		select b.id, b.title, b.published_date
		from books b
		join book_categories bc on bc.book_id = b.id
		where bc.category_id = $1
		order by b.id
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func (s *Store) BooksByOwner(ctx context.Context, ownerID string) ([]catalog.Book, error) {
	ok, err := exists(ctx, s.db, `select 1 from owners where id=$1`, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		select b.id, b.title, b.published_date
		from books b
		join book_owners bo on bo.book_id = b.id
		where bo.owner_id = $1
		order by b.id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]catalog.Book, error) {
	books := []catalog.Book{}
	for rows.Next() {
		var b catalog.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.PublishedDate); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
