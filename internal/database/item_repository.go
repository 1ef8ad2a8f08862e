package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchlog/models"
)

// ErrItemNotFound is returned when an update or delete matched no row
// owned by the requesting user.
var ErrItemNotFound = errors.New("item not found")

// ItemRepository persists watchlist items. Every query is scoped by the
// owning user id; there is no way to reach another user's rows.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, user_id, title, type, status, rating, tags, notes,
	release_year, runtime_minutes, poster_url, synopsis, cast_names, genres,
	studios, imdb_id, tmdb_id, metadata_source, created_at, updated_at`

// Create inserts a new item and fills in its generated id and timestamps.
func (r *ItemRepository) Create(item *models.Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := r.db.Exec(`INSERT INTO items
		(user_id, title, type, status, rating, tags, notes,
		 release_year, runtime_minutes, poster_url, synopsis, cast_names,
		 genres, studios, imdb_id, tmdb_id, metadata_source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.Title, item.Type, item.Status, item.Rating,
		item.Tags, item.Notes, item.ReleaseYear, item.RuntimeMinutes,
		item.PosterURL, item.Synopsis, item.Cast, item.Genres, item.Studios,
		item.IMDBID, item.TMDBID, item.MetadataSource, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted item id: %w", err)
	}
	item.ID = id
	return nil
}

// ListByUser returns all items owned by the user, newest first.
func (r *ItemRepository) ListByUser(userID string) ([]models.Item, error) {
	rows, err := r.db.Query(`SELECT `+itemColumns+` FROM items
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get returns the user's item with the given id, or nil when absent.
func (r *ItemRepository) Get(userID string, id int64) (*models.Item, error) {
	row := r.db.QueryRow(`SELECT `+itemColumns+` FROM items
		WHERE id = ? AND user_id = ?`, id, userID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update overwrites the editable fields of the user's item.
func (r *ItemRepository) Update(userID string, id int64, input models.ItemUpsert) (*models.Item, error) {
	res, err := r.db.Exec(`UPDATE items
		SET title = ?, type = ?, status = ?, rating = ?, tags = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		input.Title, input.Type, input.Status, input.Rating, input.Tags,
		input.Notes, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update item result: %w", err)
	}
	if affected == 0 {
		return nil, ErrItemNotFound
	}
	return r.Get(userID, id)
}

// Delete removes the user's item, reporting whether a row matched.
func (r *ItemRepository) Delete(userID string, id int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item result: %w", err)
	}
	return affected > 0, nil
}

// DeleteAllForUser removes every item the user owns, returning how many
// rows went away. Used when an account is deleted.
func (r *ItemRepository) DeleteAllForUser(userID string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete items for user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete items for user result: %w", err)
	}
	return affected, nil
}

// ApplyMetadata writes a resolved metadata record onto the user's item as
// a partial update: only present fields become SET entries, so an
// enrichment miss never clears data the user already has.
func (r *ItemRepository) ApplyMetadata(userID string, id int64, meta *models.Metadata) error {
	if meta == nil {
		return nil
	}

	sets := make([]string, 0, 10)
	args := make([]any, 0, 12)
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if meta.PosterURL != "" {
		add("poster_url", meta.PosterURL)
	}
	if meta.ReleaseYear != nil {
		add("release_year", *meta.ReleaseYear)
	}
	if meta.RuntimeMinutes != nil {
		add("runtime_minutes", *meta.RuntimeMinutes)
	}
	if meta.Synopsis != "" {
		add("synopsis", meta.Synopsis)
	}
	if len(meta.Cast) > 0 {
		add("cast_names", strings.Join(meta.Cast, ", "))
	}
	if len(meta.Genres) > 0 {
		add("genres", strings.Join(meta.Genres, ", "))
	}
	if len(meta.Studios) > 0 {
		add("studios", strings.Join(meta.Studios, ", "))
	}
	if meta.IMDBID != "" {
		add("imdb_id", meta.IMDBID)
	}
	if meta.TMDBID != 0 {
		add("tmdb_id", meta.TMDBID)
	}
	if meta.Source != "" {
		add("metadata_source", meta.Source)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	query := "UPDATE items SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("apply metadata: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply metadata result: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var item models.Item
	var rating, releaseYear, runtime sql.NullInt64
	var tmdbID sql.NullInt64

	err := row.Scan(&item.ID, &item.UserID, &item.Title, &item.Type,
		&item.Status, &rating, &item.Tags, &item.Notes, &releaseYear,
		&runtime, &item.PosterURL, &item.Synopsis, &item.Cast, &item.Genres,
		&item.Studios, &item.IMDBID, &tmdbID, &item.MetadataSource,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return models.Item{}, err
	}

	if rating.Valid {
		v := int(rating.Int64)
		item.Rating = &v
	}
	if releaseYear.Valid {
		v := int(releaseYear.Int64)
		item.ReleaseYear = &v
	}
	if runtime.Valid {
		v := int(runtime.Int64)
		item.RuntimeMinutes = &v
	}
	if tmdbID.Valid {
		item.TMDBID = &tmdbID.Int64
	}
	return item, nil
}
