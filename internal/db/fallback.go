package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

func (s *pgStore) GetFallback(ctx context.Context) (*model.FallbackContent, error) {
	var f model.FallbackContent
	err := s.db.GetContext(ctx, &f, `SELECT type, url, updated_at FROM fallback_content WHERE key = $1;`, model.FallbackKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Msg("GetFallback failed")
		return nil, storeError(err)
	}
	return &f, nil
}

// SetFallback replaces the single fallback row; the last write wins.
func (s *pgStore) SetFallback(ctx context.Context, content model.FallbackContent) (model.FallbackContent, error) {
	content, err := content.Normalize()
	if err != nil {
		return model.FallbackContent{}, err
	}

	var f model.FallbackContent
	const q = `
	INSERT INTO fallback_content (key, type, url, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (key) DO UPDATE
	   SET type       = EXCLUDED.type,
	       url        = EXCLUDED.url,
	       updated_at = EXCLUDED.updated_at
	RETURNING type, url, updated_at;`
	if err := s.db.GetContext(ctx, &f, q, model.FallbackKey, content.Type, content.URL); err != nil {
		log.Error().Err(err).Msg("SetFallback failed")
		return model.FallbackContent{}, storeError(err)
	}
	return f, nil
}

func (s *pgStore) ClearFallback(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fallback_content WHERE key = $1;`, model.FallbackKey); err != nil {
		log.Error().Err(err).Msg("ClearFallback failed")
		return storeError(err)
	}
	return nil
}
