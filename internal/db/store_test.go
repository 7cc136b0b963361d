package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

var playlistCols = []string{"id", "url", "title", "category", "created_at", "updated_at"}

func TestStoreErrorClassification(t *testing.T) {
	assert.ErrorIs(t, storeError(driver.ErrBadConn), ErrStoreUnavailable)
	assert.ErrorIs(t, storeError(&pq.Error{Code: "08006"}), ErrStoreUnavailable)
	assert.ErrorIs(t, storeError(&pq.Error{Code: "57P01"}), ErrStoreUnavailable)

	unique := &pq.Error{Code: "23505"}
	assert.Equal(t, error(unique), storeError(unique))
	assert.Nil(t, storeError(nil))
}

func TestListPlaylistForPlaybackOrdersOldestFirst(t *testing.T) {
	store, mock := newMockStore(t)
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("ORDER BY created_at ASC, id ASC").
		WillReturnRows(sqlmock.NewRows(playlistCols).
			AddRow(1, "https://cdn.example.com/1.mp4", "One", "promo", t0, t0).
			AddRow(2, "https://cdn.example.com/2.mp4", "Two", "promo", t0.Add(time.Minute), t0))

	items, err := store.ListPlaylistForPlayback(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)

	mock.ExpectQuery("ORDER BY created_at DESC, id DESC").WillReturnRows(sqlmock.NewRows(playlistCols))
	items, err = store.ListPlaylistItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlaylistItemNormalizesDriveLinks(t *testing.T) {
	store, mock := newMockStore(t)
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	direct := "https://drive.google.com/uc?export=download&id=abc123"

	mock.ExpectQuery("INSERT INTO playlist_items").
		WithArgs(direct, "Promo", "ads").
		WillReturnRows(sqlmock.NewRows(playlistCols).AddRow(5, direct, "Promo", "ads", t0, t0))

	it, err := store.AddPlaylistItem(context.Background(), model.PlaylistItemInput{
		URL:      "https://drive.google.com/file/d/abc123/view",
		Title:    "Promo",
		Category: "ads",
	})
	require.NoError(t, err)
	assert.Equal(t, direct, it.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFallbackRoundTrip(t *testing.T) {
	store, mock := newMockStore(t)
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cols := []string{"type", "url", "updated_at"}

	mock.ExpectQuery("FROM fallback_content").WithArgs(model.FallbackKey).WillReturnRows(sqlmock.NewRows(cols))
	f, err := store.GetFallback(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f)

	mock.ExpectQuery("ON CONFLICT \\(key\\) DO UPDATE").
		WithArgs(model.FallbackKey, model.ContentImage, "https://cdn.example.com/idle.png").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("image", "https://cdn.example.com/idle.png", t0))
	saved, err := store.SetFallback(context.Background(), model.FallbackContent{Type: model.ContentImage, URL: "https://cdn.example.com/idle.png"})
	require.NoError(t, err)
	assert.Equal(t, model.ContentImage, saved.Type)

	mock.ExpectExec("DELETE FROM fallback_content").WithArgs(model.FallbackKey).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.ClearFallback(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseNotification(t *testing.T) {
	c, err := parseNotification(`{"collection":"playlist","op":"delete"}`)
	require.NoError(t, err)
	assert.Equal(t, feed.Change{Collection: feed.Playlist, Op: feed.OpDelete}, c)

	c, err = parseNotification(`{"collection":"fallback"}`)
	require.NoError(t, err)
	assert.Equal(t, feed.OpUpdate, c.Op)

	_, err = parseNotification(`{"collection":"screens","op":"insert"}`)
	assert.Error(t, err)
	_, err = parseNotification(`not json`)
	assert.Error(t, err)
}

func TestMemoryStorePublishesAndEnforcesConflicts(t *testing.T) {
	hub := feed.NewHub()
	changes, cancel := hub.Subscribe()
	defer cancel()

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore(hub).WithClock(func() time.Time { return clock })
	ctx := context.Background()

	first, err := store.CreateScheduleItem(ctx, scheduleInput(clock.Add(2*time.Hour), 30))
	require.NoError(t, err)
	assert.Equal(t, feed.Change{Collection: feed.Schedule, Op: feed.OpInsert}, <-changes)

	_, err = store.CreateScheduleItem(ctx, scheduleInput(clock.Add(2*time.Hour+15*time.Minute), 30))
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.With.ID)

	items, err := store.ListScheduleItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "rejected write must not be stored")

	_, err = store.UpdateScheduleItem(ctx, first.ID, scheduleInput(clock.Add(2*time.Hour+10*time.Minute), 30))
	require.NoError(t, err)
	assert.Equal(t, feed.OpUpdate, (<-changes).Op)
}

func TestMemoryStorePlaylistOrdering(t *testing.T) {
	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore(nil).WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := store.AddPlaylistItem(ctx, model.PlaylistItemInput{URL: "https://cdn.example.com/" + title + ".mp4", Title: title, Category: "loop"})
		require.NoError(t, err)
	}

	playback, _ := store.ListPlaylistForPlayback(ctx)
	management, _ := store.ListPlaylistItems(ctx)
	require.Len(t, playback, 3)
	assert.Equal(t, []string{"a", "b", "c"}, titles(playback))
	assert.Equal(t, []string{"c", "b", "a"}, titles(management))

	assert.ErrorIs(t, store.DeletePlaylistItem(ctx, 999), ErrNotFound)
}

func titles(items []model.PlaylistItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestMemoryStoreActiveTieBreaksOnID(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(nil)
	for _, id := range []int{4, 9, 7} {
		store.schedule[id] = model.ScheduleItem{
			ID:          id,
			Title:       "Launch",
			URL:         "https://cdn.example.com/launch.mp4",
			ContentType: model.ContentVideo,
			StartTime:   start,
			EndTime:     start.Add(30 * time.Minute),
		}
	}

	found, err := store.FindActiveScheduleItem(context.Background(), start.Add(10*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 9, found.ID)
}
