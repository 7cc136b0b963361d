package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

const playlistColumns = `id, url, title, category, created_at, updated_at`

func (s *pgStore) AddPlaylistItem(ctx context.Context, in model.PlaylistItemInput) (model.PlaylistItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.PlaylistItem{}, err
	}

	var it model.PlaylistItem
	const q = `
	INSERT INTO playlist_items (url, title, category, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING ` + playlistColumns + `;`
	if err := s.db.GetContext(ctx, &it, q, in.URL, in.Title, in.Category); err != nil {
		log.Error().Err(err).Msg("[db] AddPlaylistItem: failed to insert playlist item")
		return model.PlaylistItem{}, storeError(err)
	}
	return it, nil
}

// UpdatePlaylistItem rewrites url/title/category; created_at, and therefore the
// item's playback position, is left alone.
func (s *pgStore) UpdatePlaylistItem(ctx context.Context, id int, in model.PlaylistItemInput) (model.PlaylistItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.PlaylistItem{}, err
	}

	var it model.PlaylistItem
	const q = `
	UPDATE playlist_items
	   SET url        = $2,
	       title      = $3,
	       category   = $4,
	       updated_at = now()
	 WHERE id = $1
	RETURNING ` + playlistColumns + `;`
	if err := s.db.GetContext(ctx, &it, q, id, in.URL, in.Title, in.Category); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("item_id", id).Msg("[db] UpdatePlaylistItem failed")
		}
		return model.PlaylistItem{}, storeError(err)
	}
	return it, nil
}

func (s *pgStore) DeletePlaylistItem(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlist_items WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("item_id", id).Msg("[db] DeletePlaylistItem failed")
		return storeError(err)
	}
	return requireAffected(res)
}

func (s *pgStore) GetPlaylistItem(ctx context.Context, id int) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	err := s.db.GetContext(ctx, &it, `SELECT `+playlistColumns+` FROM playlist_items WHERE id = $1;`, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("item_id", id).Msg("[db] GetPlaylistItem failed")
		}
		return model.PlaylistItem{}, storeError(err)
	}
	return it, nil
}

func (s *pgStore) ListPlaylistItems(ctx context.Context) ([]model.PlaylistItem, error) {
	return s.listPlaylist(ctx, `ORDER BY created_at DESC, id DESC`)
}

func (s *pgStore) ListPlaylistForPlayback(ctx context.Context) ([]model.PlaylistItem, error) {
	return s.listPlaylist(ctx, `ORDER BY created_at ASC, id ASC`)
}

func (s *pgStore) listPlaylist(ctx context.Context, order string) ([]model.PlaylistItem, error) {
	out := []model.PlaylistItem{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+playlistColumns+` FROM playlist_items `+order+`;`); err != nil {
		log.Error().Err(err).Msg("[db] failed to list playlist items")
		return nil, storeError(err)
	}
	return out, nil
}
