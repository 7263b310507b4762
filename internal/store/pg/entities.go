package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookrack.org/internal/catalog"
	"bookrack.org/internal/ids"
)

// --- categories ---

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into categories(id, name, name_norm) values ($1,$2,$3)
	`, c.ID, c.Name, catalog.Normalize(c.Name))
	return mapUniqueViolation(err)
}

func (s *Store) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	var c catalog.Category
	err := s.db.QueryRowContext(ctx, `select id, name from categories where id=$1`, id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Category{}, err
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name from categories order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	res, err := s.db.ExecContext(ctx, `
		update categories set name=$2, name_norm=$3 where id=$1
	`, c.ID, c.Name, catalog.Normalize(c.Name))
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `delete from book_categories where category_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from categories where id=$1`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// --- owners ---

// CreateOwner links the owner to an existing country; a missing country id
// fails fast instead of storing a dangling reference.
func (s *Store) CreateOwner(ctx context.Context, countryID string, o *catalog.Owner) error {
	if o.ID == "" {
		o.ID = ids.New()
	}
	o.CountryID = countryID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, `select 1 from countries where id=$1`, countryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("country %s: %w", countryID, catalog.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `
		insert into owners(id, first_name, last_name, country_id) values ($1,$2,$3,$4)
	`, o.ID, o.FirstName, o.LastName, countryID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetOwner(ctx context.Context, id string) (catalog.Owner, error) {
	var o catalog.Owner
	err := s.db.QueryRowContext(ctx, `
		select id, first_name, last_name, country_id from owners where id=$1
	`, id).Scan(&o.ID, &o.FirstName, &o.LastName, &o.CountryID)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Owner{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Owner{}, err
	}
	return o, nil
}

func (s *Store) ListOwners(ctx context.Context) ([]catalog.Owner, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, first_name, last_name, country_id from owners order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Owner{}
	for rows.Next() {
		var o catalog.Owner
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.CountryID); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) UpdateOwner(ctx context.Context, o *catalog.Owner) error {
	res, err := s.db.ExecContext(ctx, `
		update owners set first_name=$2, last_name=$3 where id=$1
	`, o.ID, o.FirstName, o.LastName)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteOwner(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `delete from book_owners where owner_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from owners where id=$1`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// --- countries ---

func (s *Store) CreateCountry(ctx context.Context, c *catalog.Country) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into countries(id, name, name_norm) values ($1,$2,$3)
	`, c.ID, c.Name, catalog.Normalize(c.Name))
	return mapUniqueViolation(err)
}

func (s *Store) GetCountry(ctx context.Context, id string) (catalog.Country, error) {
	var c catalog.Country
	err := s.db.QueryRowContext(ctx, `select id, name from countries where id=$1`, id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Country{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Country{}, err
	}
	return c, nil
}

func (s *Store) ListCountries(ctx context.Context) ([]catalog.Country, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name from countries order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Country{}
	for rows.Next() {
		var c catalog.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCountry(ctx context.Context, c *catalog.Country) error {
	res, err := s.db.ExecContext(ctx, `
		update countries set name=$2, name_norm=$3 where id=$1
	`, c.ID, c.Name, catalog.Normalize(c.Name))
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireAffected(res)
}

// DeleteCountry refuses to remove a country that owners still reference;
// the foreign key surfaces that as a conflict.
func (s *Store) DeleteCountry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from countries where id=$1`, id)
	if err != nil {
		return mapFKViolation(err)
	}
	return requireAffected(res)
}

func (s *Store) CountryOfOwner(ctx context.Context, ownerID string) (catalog.Country, error) {
	var c catalog.Country
	err := s.db.QueryRowContext(ctx, `
		select c.id, c.name
		from countries c
		join owners o on o.country_id = c.id
		where o.id = $1
	`, ownerID).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Country{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Country{}, err
	}
	return c, nil
}

// --- reviewers ---

func (s *Store) CreateReviewer(ctx context.Context, r *catalog.Reviewer) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into reviewers(id, first_name, last_name) values ($1,$2,$3)
	`, r.ID, r.FirstName, r.LastName)
	return err
}

func (s *Store) GetReviewer(ctx context.Context, id string) (catalog.Reviewer, error) {
	var r catalog.Reviewer
	err := s.db.QueryRowContext(ctx, `
		select id, first_name, last_name from reviewers where id=$1
	`, id).Scan(&r.ID, &r.FirstName, &r.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Reviewer{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Reviewer{}, err
	}
	return r, nil
}

func (s *Store) ListReviewers(ctx context.Context) ([]catalog.Reviewer, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, first_name, last_name from reviewers order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Reviewer{}
	for rows.Next() {
		var r catalog.Reviewer
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateReviewer(ctx context.Context, r *catalog.Reviewer) error {
	res, err := s.db.ExecContext(ctx, `
		update reviewers set first_name=$2, last_name=$3 where id=$1
	`, r.ID, r.FirstName, r.LastName)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteReviewer removes the reviewer together with every review they wrote,
// in one transaction.
func (s *Store) DeleteReviewer(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `delete from reviews where reviewer_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from reviewers where id=$1`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
