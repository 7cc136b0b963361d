package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/schedule"
)

// scheduleLockKey serializes schedule writes so the overlap check and the
// write it guards see the same rows.
const scheduleLockKey = 0x5c4ed01e

const scheduleColumns = `id, title, url, content_type, start_time, end_time, created_at, updated_at`

func (s *pgStore) CreateScheduleItem(ctx context.Context, in model.ScheduleItemInput) (model.ScheduleItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.ScheduleItem{}, err
	}

	var item model.ScheduleItem
	err = s.withScheduleLock(ctx, func(tx *sqlx.Tx) error {
		if err := checkOverlap(ctx, tx, in.Window(), 0); err != nil {
			return err
		}
		return tx.GetContext(ctx, &item, `
		INSERT INTO schedule_items (title, url, content_type, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+scheduleColumns+`;`,
			in.Title, in.URL, in.ContentType, in.StartTime, in.EndTime,
		)
	})
	if err != nil {
		logWriteError(err, "CreateScheduleItem failed")
		return model.ScheduleItem{}, storeError(err)
	}
	return item, nil
}

func (s *pgStore) UpdateScheduleItem(ctx context.Context, id int, in model.ScheduleItemInput) (model.ScheduleItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.ScheduleItem{}, err
	}

	var item model.ScheduleItem
	err = s.withScheduleLock(ctx, func(tx *sqlx.Tx) error {
		var existing int
		if err := tx.GetContext(ctx, &existing, `SELECT id FROM schedule_items WHERE id = $1 FOR UPDATE;`, id); err != nil {
			return err
		}
		if err := checkOverlap(ctx, tx, in.Window(), id); err != nil {
			return err
		}
		return tx.GetContext(ctx, &item, `
		UPDATE schedule_items
		   SET title        = $2,
		       url          = $3,
		       content_type = $4,
		       start_time   = $5,
		       end_time     = $6,
		       updated_at   = now()
		 WHERE id = $1
		RETURNING `+scheduleColumns+`;`,
			id, in.Title, in.URL, in.ContentType, in.StartTime, in.EndTime,
		)
	})
	if err != nil {
		logWriteError(err, "UpdateScheduleItem failed", id)
		return model.ScheduleItem{}, storeError(err)
	}
	return item, nil
}

func (s *pgStore) DeleteScheduleItem(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedule_items WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("DeleteScheduleItem failed")
		return storeError(err)
	}
	return requireAffected(res)
}

func (s *pgStore) GetScheduleItem(ctx context.Context, id int) (model.ScheduleItem, error) {
	var item model.ScheduleItem
	err := s.db.GetContext(ctx, &item, `SELECT `+scheduleColumns+` FROM schedule_items WHERE id = $1;`, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("schedule_id", id).Msg("GetScheduleItem failed")
		}
		return model.ScheduleItem{}, storeError(err)
	}
	return item, nil
}

func (s *pgStore) ListScheduleItems(ctx context.Context) ([]model.ScheduleItem, error) {
	out := []model.ScheduleItem{}
	const q = `SELECT ` + scheduleColumns + ` FROM schedule_items ORDER BY start_time, id;`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		log.Error().Err(err).Msg("ListScheduleItems failed")
		return nil, storeError(err)
	}
	return out, nil
}

// FindActiveScheduleItem returns the item whose window contains now, preferring
// the most recently started one, or nil when nothing is on.
func (s *pgStore) FindActiveScheduleItem(ctx context.Context, now time.Time) (*model.ScheduleItem, error) {
	var item model.ScheduleItem
	const q = `
	SELECT ` + scheduleColumns + `
	  FROM schedule_items
	 WHERE start_time <= $1
	   AND end_time   >= $1
	 ORDER BY start_time DESC, id DESC
	 LIMIT 1;`
	if err := s.db.GetContext(ctx, &item, q, now.UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Time("at", now).Msg("FindActiveScheduleItem failed")
		return nil, storeError(err)
	}
	return &item, nil
}

// checkOverlap loads the rows that could clash with w and lets the conflict
// checker decide.
func checkOverlap(ctx context.Context, tx *sqlx.Tx, w model.Window, excludeID int) error {
	var candidates []model.ScheduleItem
	const q = `
	SELECT ` + scheduleColumns + `
	  FROM schedule_items
	 WHERE start_time < $2
	   AND end_time   > $1
	 ORDER BY start_time, id;`
	if err := tx.SelectContext(ctx, &candidates, q, w.Start, w.End); err != nil {
		return fmt.Errorf("overlap check: %w", err)
	}
	return schedule.CheckConflict(w, candidates, excludeID)
}

func (s *pgStore) withScheduleLock(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1);`, scheduleLockKey); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func logWriteError(err error, msg string, id ...int) {
	var conflict *model.ConflictError
	var evt = log.Error()
	if errors.As(err, &conflict) {
		evt = log.Info()
	}
	if len(id) > 0 {
		evt = evt.Int("schedule_id", id[0])
	}
	evt.Err(err).Msg(msg)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
