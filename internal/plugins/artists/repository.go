package artists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// MariaDB error numbers the repository translates into domain errors.
const (
	mysqlErrDuplicateEntry  = 1062 // unique key violation
	mysqlErrRowIsReferenced = 1451 // FK RESTRICT blocked the delete
)

// ArtistRepository defines the data access contract for artist operations.
type ArtistRepository interface {
	Create(ctx context.Context, artist *Artist) error
	FindByID(ctx context.Context, id int64) (*Artist, error)
	FindByName(ctx context.Context, name string) (*Artist, error)
	List(ctx context.Context) ([]Artist, error)
	Update(ctx context.Context, artist *Artist) error
	Delete(ctx context.Context, id int64) error
}

// artistRepository implements ArtistRepository with MariaDB queries.
type artistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new artist repository.
func NewArtistRepository(db *sql.DB) ArtistRepository {
	return &artistRepository{db: db}
}

// Create inserts a new artist row. The name column's unique index uses a
// case-insensitive collation, so "queen" conflicts with "Queen".
func (r *artistRepository) Create(ctx context.Context, artist *Artist) error {
	query := `INSERT INTO artists (name, description) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, artist.Name, artist.Description)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return apperror.NewUniquenessConflict("an artist with this name already exists")
		}
		return fmt.Errorf("inserting artist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting artist id: %w", err)
	}
	artist.ID = id
	return nil
}

// FindByID retrieves an artist by its auto-increment ID.
// Returns apperror.NotFound if no artist exists with this ID.
func (r *artistRepository) FindByID(ctx context.Context, id int64) (*Artist, error) {
	query := `SELECT id, name, description FROM artists WHERE id = ?`

	artist := &Artist{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&artist.ID,
		&artist.Name,
		&artist.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("artist not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist by id: %w", err)
	}

	return artist, nil
}

// FindByName retrieves an artist by name. The name column's collation makes
// the lookup case-insensitive. Returns apperror.NotFound if no match exists.
func (r *artistRepository) FindByName(ctx context.Context, name string) (*Artist, error) {
	query := `SELECT id, name, description FROM artists WHERE name = ?`

	artist := &Artist{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&artist.ID,
		&artist.Name,
		&artist.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("artist not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist by name: %w", err)
	}

	return artist, nil
}

// List returns all artists ordered by id.
func (r *artistRepository) List(ctx context.Context) ([]Artist, error) {
	query := `SELECT id, name, description FROM artists ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	defer rows.Close()

	var list []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("scanning artist row: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update replaces an artist's name and description. A rename that collides
// with another artist's name (case-insensitively) is a uniqueness conflict.
func (r *artistRepository) Update(ctx context.Context, artist *Artist) error {
	query := `UPDATE artists SET name = ?, description = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, artist.Name, artist.Description, artist.ID)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return apperror.NewUniquenessConflict("an artist with this name already exists")
		}
		return fmt.Errorf("updating artist: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update;
		// distinguish with a lookup so no-op updates still return 200.
		if _, err := r.FindByID(ctx, artist.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an artist. The songs table references artists with ON
// DELETE RESTRICT, so the database itself refuses to delete an artist that
// still has songs -- that refusal is atomic with concurrent song creation,
// unlike a separate existence check, and maps to a referential conflict.
func (r *artistRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrRowIsReferenced {
			return apperror.NewReferentialConflict("artist is still referenced by songs")
		}
		return fmt.Errorf("deleting artist: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("artist not found")
	}
	return nil
}
