package songs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/yousong/internal/apperror"
)

// mysqlErrNoReferencedRow fires when an INSERT/UPDATE references a missing
// foreign row -- here, a song pointing at an artist that doesn't exist.
const mysqlErrNoReferencedRow = 1452

// SongRepository defines the data access contract for song operations.
// All SQL lives here -- the service layer never sees a query.
type SongRepository interface {
	Create(ctx context.Context, song *Song) error
	FindByID(ctx context.Context, id int64) (*Song, error)
	List(ctx context.Context, opts ListOptions) ([]Song, int, error)

	// Catalog filters by optional free text and a genre set. Free text
	// matches title, artist name, or any genre (OR). The genre filter is
	// a superset match: a song qualifies only if it carries every
	// requested genre. Both filters compose with AND.
	Catalog(ctx context.Context, query string, genres []string, opts ListOptions) ([]Song, int, error)

	// SearchProjected is the unpaginated free-text search backing
	// GET /api/songs/search.
	SearchProjected(ctx context.Context, query string) ([]Song, error)

	// UpdateWithVersion performs the optimistic-concurrency update: the
	// write succeeds only if the row still carries expectedVersion at
	// commit time. On success the song's derived fields (artist name,
	// timestamps, version) are filled from the same transaction, and the
	// new version is returned.
	UpdateWithVersion(ctx context.Context, song *Song, expectedVersion int64) (int64, error)

	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// songRepository implements SongRepository with MariaDB queries.
type songRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new song repository.
func NewSongRepository(db *sql.DB) SongRepository {
	return &songRepository{db: db}
}

// Create inserts a song and its genre rows in one transaction. The song
// starts at version 0.
func (r *songRepository) Create(ctx context.Context, song *Song) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning create tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO songs (title, length_seconds, artist_id, music_data, owner_id, version)
	          VALUES (?, ?, ?, ?, ?, 0)`

	result, err := tx.ExecContext(ctx, query,
		song.Title,
		song.LengthSeconds,
		song.ArtistID,
		song.MusicData,
		song.OwnerID,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrNoReferencedRow {
			return apperror.NewUnresolvedReference("artist does not exist")
		}
		return fmt.Errorf("inserting song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting song id: %w", err)
	}
	song.ID = id
	song.Version = 0

	if err := insertGenres(ctx, tx, id, song.Genres); err != nil {
		return err
	}

	return tx.Commit()
}

// FindByID retrieves a song with its artist name and genre set.
// Returns apperror.NotFound if no song exists with this ID.
func (r *songRepository) FindByID(ctx context.Context, id int64) (*Song, error) {
	query := `SELECT s.id, s.title, s.length_seconds, s.artist_id, a.name,
	                 s.music_data, s.owner_id, s.version, s.created_at, s.updated_at
	          FROM songs s
	          JOIN artists a ON a.id = s.artist_id
	          WHERE s.id = ?`

	song := &Song{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&song.ID,
		&song.Title,
		&song.LengthSeconds,
		&song.ArtistID,
		&song.ArtistName,
		&song.MusicData,
		&song.OwnerID,
		&song.Version,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("song not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying song by id: %w", err)
	}

	genres, err := r.loadGenres(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	song.Genres = genres[id]

	return song, nil
}

// List returns a page of songs ordered by id, with the total count. The
// id ordering makes pagination deterministic across requests.
func (r *songRepository) List(ctx context.Context, opts ListOptions) ([]Song, int, error) {
	return r.Catalog(ctx, "", nil, opts)
}

// Catalog runs the filtered catalog query. Both filters are optional; with
// neither this is a plain ordered page over the whole table.
func (r *songRepository) Catalog(ctx context.Context, query string, genres []string, opts ListOptions) ([]Song, int, error) {
	where, args := buildCatalogFilter(query, genres)

	var total int
	countQuery := `SELECT COUNT(*) FROM songs s JOIN artists a ON a.id = s.artist_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting songs: %w", err)
	}

	// music_data is deliberately absent: list rows must stay small even
	// when songs carry embedded audio.
	listQuery := `SELECT s.id, s.title, s.length_seconds, s.artist_id, a.name,
	                     s.owner_id, s.version, s.created_at, s.updated_at
	              FROM songs s
	              JOIN artists a ON a.id = s.artist_id` +
		where + ` ORDER BY s.id LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, listQuery, append(args, opts.Size, opts.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing songs: %w", err)
	}
	defer rows.Close()

	songs, err := scanSongRows(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachGenres(ctx, songs); err != nil {
		return nil, 0, err
	}

	return songs, total, nil
}

// SearchProjected returns every song matching the free-text query, ordered
// by id, without pagination or music data.
func (r *songRepository) SearchProjected(ctx context.Context, query string) ([]Song, error) {
	where, args := buildCatalogFilter(query, nil)

	listQuery := `SELECT s.id, s.title, s.length_seconds, s.artist_id, a.name,
	                     s.owner_id, s.version, s.created_at, s.updated_at
	              FROM songs s
	              JOIN artists a ON a.id = s.artist_id` +
		where + ` ORDER BY s.id`

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching songs: %w", err)
	}
	defer rows.Close()

	songs, err := scanSongRows(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachGenres(ctx, songs); err != nil {
		return nil, err
	}

	return songs, nil
}

// UpdateWithVersion rewrites a song under the optimistic-concurrency rule.
// The transaction latches the row with SELECT ... FOR UPDATE, compares the
// stored version against what the client read, and only then writes. The
// version bump happens inside the UPDATE statement itself -- clients never
// supply the new version, they only echo the one they saw.
func (r *songRepository) UpdateWithVersion(ctx context.Context, song *Song, expectedVersion int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning update tx: %w", err)
	}
	defer tx.Rollback()

	// Latch the row so a concurrent update can't slip between the
	// version check and the write.
	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM songs WHERE id = ? FOR UPDATE`, song.ID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.NewNotFound("song not found")
	}
	if err != nil {
		return 0, fmt.Errorf("locking song row: %w", err)
	}

	if current != expectedVersion {
		return 0, apperror.NewVersionConflict(
			fmt.Sprintf("song was modified concurrently: expected version %d, found %d", expectedVersion, current))
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE songs
		 SET title = ?, length_seconds = ?, artist_id = ?, music_data = ?,
		     version = version + 1
		 WHERE id = ? AND version = ?`,
		song.Title, song.LengthSeconds, song.ArtistID, song.MusicData,
		song.ID, expectedVersion,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrNoReferencedRow {
			return 0, apperror.NewUnresolvedReference("artist does not exist")
		}
		return 0, fmt.Errorf("updating song: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Unreachable while we hold the row lock, but a cheap safety net.
		return 0, apperror.NewVersionConflict("song was modified concurrently")
	}

	// Replace the genre set in the same transaction so readers never see
	// a half-updated song.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM song_genres WHERE song_id = ?`, song.ID,
	); err != nil {
		return 0, fmt.Errorf("clearing song genres: %w", err)
	}
	if err := insertGenres(ctx, tx, song.ID, song.Genres); err != nil {
		return 0, err
	}

	// Fill the response fields from inside the transaction. A read after
	// commit could observe a later update's state under a newer version.
	if err := tx.QueryRowContext(ctx,
		`SELECT a.name, s.created_at, s.updated_at
		 FROM songs s
		 JOIN artists a ON a.id = s.artist_id
		 WHERE s.id = ?`, song.ID,
	).Scan(&song.ArtistName, &song.CreatedAt, &song.UpdatedAt); err != nil {
		return 0, fmt.Errorf("reading updated song: %w", err)
	}
	song.Version = expectedVersion + 1

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing update tx: %w", err)
	}

	return song.Version, nil
}

// Delete removes a song. Genre rows follow via ON DELETE CASCADE.
func (r *songRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting song: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("song not found")
	}
	return nil
}

// Count returns the total number of songs. Used by the seed routine.
func (r *songRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return count, nil
}

// --- Query building ---

// buildCatalogFilter assembles the WHERE clause for catalog queries.
// Returns the clause (with leading " WHERE", or empty) and its arguments.
func buildCatalogFilter(query string, genres []string) (string, []any) {
	var conditions []string
	var args []any

	if query != "" {
		// Free text matches title, artist name, or any genre of the song.
		like := "%" + strings.ToLower(query) + "%"
		conditions = append(conditions, `(LOWER(s.title) LIKE ?
			OR LOWER(a.name) LIKE ?
			OR EXISTS (SELECT 1 FROM song_genres sg
			           WHERE sg.song_id = s.id AND LOWER(sg.genre) LIKE ?))`)
		args = append(args, like, like, like)
	}

	if len(genres) > 0 {
		// Superset semantics: the song must carry every requested genre.
		// Counting DISTINCT lowered genres makes the comparison immune to
		// duplicates on either side.
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(genres)), ", ")
		conditions = append(conditions, fmt.Sprintf(
			`s.id IN (SELECT sg.song_id FROM song_genres sg
			          WHERE LOWER(sg.genre) IN (%s)
			          GROUP BY sg.song_id
			          HAVING COUNT(DISTINCT LOWER(sg.genre)) = %d)`,
			placeholders, len(genres)))
		for _, g := range genres {
			args = append(args, strings.ToLower(g))
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanSongRows reads catalog rows (no music_data column) into songs.
func scanSongRows(rows *sql.Rows) ([]Song, error) {
	var songs []Song
	for rows.Next() {
		var s Song
		if err := rows.Scan(
			&s.ID, &s.Title, &s.LengthSeconds, &s.ArtistID, &s.ArtistName,
			&s.OwnerID, &s.Version, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning song row: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// attachGenres loads the genre sets for the given songs in one query.
func (r *songRepository) attachGenres(ctx context.Context, songs []Song) error {
	if len(songs) == 0 {
		return nil
	}
	ids := make([]int64, len(songs))
	for i := range songs {
		ids[i] = songs[i].ID
	}

	genres, err := r.loadGenres(ctx, ids)
	if err != nil {
		return err
	}
	for i := range songs {
		songs[i].Genres = genres[songs[i].ID]
	}
	return nil
}

// loadGenres fetches genre rows for a set of song ids, keyed by song id.
func (r *songRepository) loadGenres(ctx context.Context, ids []int64) (map[int64][]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT song_id, genre FROM song_genres WHERE song_id IN (%s) ORDER BY song_id, genre`,
		placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("loading song genres: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]string, len(ids))
	for rows.Next() {
		var songID int64
		var genre string
		if err := rows.Scan(&songID, &genre); err != nil {
			return nil, fmt.Errorf("scanning genre row: %w", err)
		}
		out[songID] = append(out[songID], genre)
	}
	return out, rows.Err()
}

// insertGenres writes one row per genre for a song inside a transaction.
func insertGenres(ctx context.Context, tx *sql.Tx, songID int64, genres []string) error {
	for _, genre := range genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO song_genres (song_id, genre) VALUES (?, ?)`,
			songID, genre,
		); err != nil {
			return fmt.Errorf("inserting song genre %q: %w", genre, err)
		}
	}
	return nil
}
