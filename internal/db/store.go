// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

type ScheduleStore interface {
	CreateScheduleItem(ctx context.Context, in model.ScheduleItemInput) (model.ScheduleItem, error)
	UpdateScheduleItem(ctx context.Context, id int, in model.ScheduleItemInput) (model.ScheduleItem, error)
	DeleteScheduleItem(ctx context.Context, id int) error
	GetScheduleItem(ctx context.Context, id int) (model.ScheduleItem, error)
	ListScheduleItems(ctx context.Context) ([]model.ScheduleItem, error)
	FindActiveScheduleItem(ctx context.Context, now time.Time) (*model.ScheduleItem, error)
}

type PlaylistStore interface {
	AddPlaylistItem(ctx context.Context, in model.PlaylistItemInput) (model.PlaylistItem, error)
	UpdatePlaylistItem(ctx context.Context, id int, in model.PlaylistItemInput) (model.PlaylistItem, error)
	DeletePlaylistItem(ctx context.Context, id int) error
	GetPlaylistItem(ctx context.Context, id int) (model.PlaylistItem, error)
	// newest first, for the management view
	ListPlaylistItems(ctx context.Context) ([]model.PlaylistItem, error)
	// oldest first, for playback
	ListPlaylistForPlayback(ctx context.Context) ([]model.PlaylistItem, error)
}

type FallbackStore interface {
	// returns nil, nil when no fallback has been set
	GetFallback(ctx context.Context) (*model.FallbackContent, error)
	SetFallback(ctx context.Context, content model.FallbackContent) (model.FallbackContent, error)
	ClearFallback(ctx context.Context) error
}

type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id int, email string, name *string) error
}

type Store interface {
	ScheduleStore
	PlaylistStore
	FallbackStore
	UserStore
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
