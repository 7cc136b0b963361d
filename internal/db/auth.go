package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

// inserts new user into table, returns new user ID.
func (s *pgStore) CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error) {
	query := `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;
	`
	var newID int
	if err := s.db.QueryRowxContext(ctx, query, email, hashedPassword, name).Scan(&newID); err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return 0, storeError(err)
	}
	return newID, nil
}

// fetches user by email. returns nil, ErrNotFound if not found.
func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `WHERE email = $1`, email)
}

// fetches a user by ID. returns nil, ErrNotFound if not found.
func (s *pgStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

func (s *pgStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	query := `SELECT id, email, hashed_password, name, created_at, updated_at FROM users ` + where + `;`
	if err := s.db.GetContext(ctx, &u, query, arg); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Msg("failed to get user")
		}
		return nil, storeError(err)
	}
	return &u, nil
}

// updates a user's email and name, and bumps updated_at.
func (s *pgStore) UpdateUserProfile(ctx context.Context, id int, email string, name *string) error {
	query := `
	UPDATE users
	SET email = $2,
	name = $3,
	updated_at = now()
	WHERE id = $1;
	`
	res, err := s.db.ExecContext(ctx, query, id, email, name)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("failed to update user profile")
		return storeError(err)
	}
	return requireAffected(res)
}
