package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/schedule"
)

// MemoryStore keeps every collection in process. It backs development mode and
// tests, and publishes a change for each successful write the way the
// PostgreSQL triggers do.
type MemoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	changes  feed.Publisher
	nextID   int
	schedule map[int]model.ScheduleItem
	playlist map[int]model.PlaylistItem
	fallback *model.FallbackContent
	users    map[int]model.User
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. changes may be nil.
func NewMemoryStore(changes feed.Publisher) *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		changes:  changes,
		schedule: map[int]model.ScheduleItem{},
		playlist: map[int]model.PlaylistItem{},
		users:    map[int]model.User{},
	}
}

// WithClock overrides the timestamp source, so tests can control created_at.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) publish(c feed.Collection, op feed.Op) {
	if m.changes != nil {
		m.changes.Publish(feed.Change{Collection: c, Op: op})
	}
}

func (m *MemoryStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateScheduleItem(ctx context.Context, in model.ScheduleItemInput) (model.ScheduleItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.ScheduleItem{}, err
	}

	m.mu.Lock()
	if err := schedule.CheckConflict(in.Window(), m.scheduleLocked(), 0); err != nil {
		m.mu.Unlock()
		return model.ScheduleItem{}, err
	}
	now := m.now().UTC()
	item := model.ScheduleItem{
		ID:          m.id(),
		Title:       in.Title,
		URL:         in.URL,
		ContentType: in.ContentType,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.schedule[item.ID] = item
	m.mu.Unlock()

	m.publish(feed.Schedule, feed.OpInsert)
	return item, nil
}

func (m *MemoryStore) UpdateScheduleItem(ctx context.Context, id int, in model.ScheduleItemInput) (model.ScheduleItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.ScheduleItem{}, err
	}

	m.mu.Lock()
	item, ok := m.schedule[id]
	if !ok {
		m.mu.Unlock()
		return model.ScheduleItem{}, ErrNotFound
	}
	if err := schedule.CheckConflict(in.Window(), m.scheduleLocked(), id); err != nil {
		m.mu.Unlock()
		return model.ScheduleItem{}, err
	}
	item.Title = in.Title
	item.URL = in.URL
	item.ContentType = in.ContentType
	item.StartTime = in.StartTime
	item.EndTime = in.EndTime
	item.UpdatedAt = m.now().UTC()
	m.schedule[id] = item
	m.mu.Unlock()

	m.publish(feed.Schedule, feed.OpUpdate)
	return item, nil
}

func (m *MemoryStore) DeleteScheduleItem(ctx context.Context, id int) error {
	m.mu.Lock()
	if _, ok := m.schedule[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.schedule, id)
	m.mu.Unlock()

	m.publish(feed.Schedule, feed.OpDelete)
	return nil
}

func (m *MemoryStore) GetScheduleItem(ctx context.Context, id int) (model.ScheduleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.schedule[id]
	if !ok {
		return model.ScheduleItem{}, ErrNotFound
	}
	return item, nil
}

func (m *MemoryStore) ListScheduleItems(ctx context.Context) ([]model.ScheduleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduleLocked(), nil
}

func (m *MemoryStore) FindActiveScheduleItem(ctx context.Context, now time.Time) (*model.ScheduleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *model.ScheduleItem
	for _, it := range m.scheduleLocked() {
		if !it.Window().Contains(now) {
			continue
		}
		if found == nil || it.StartTime.After(found.StartTime) ||
			(it.StartTime.Equal(found.StartTime) && it.ID > found.ID) {
			cp := it
			found = &cp
		}
	}
	return found, nil
}

// scheduleLocked returns items by start time; callers hold m.mu.
func (m *MemoryStore) scheduleLocked() []model.ScheduleItem {
	out := make([]model.ScheduleItem, 0, len(m.schedule))
	for _, it := range m.schedule {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MemoryStore) AddPlaylistItem(ctx context.Context, in model.PlaylistItemInput) (model.PlaylistItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.PlaylistItem{}, err
	}

	m.mu.Lock()
	now := m.now().UTC()
	it := model.PlaylistItem{
		ID:        m.id(),
		URL:       in.URL,
		Title:     in.Title,
		Category:  in.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.playlist[it.ID] = it
	m.mu.Unlock()

	m.publish(feed.Playlist, feed.OpInsert)
	return it, nil
}

func (m *MemoryStore) UpdatePlaylistItem(ctx context.Context, id int, in model.PlaylistItemInput) (model.PlaylistItem, error) {
	in, err := in.Normalize()
	if err != nil {
		return model.PlaylistItem{}, err
	}

	m.mu.Lock()
	it, ok := m.playlist[id]
	if !ok {
		m.mu.Unlock()
		return model.PlaylistItem{}, ErrNotFound
	}
	it.URL, it.Title, it.Category = in.URL, in.Title, in.Category
	it.UpdatedAt = m.now().UTC()
	m.playlist[id] = it
	m.mu.Unlock()

	m.publish(feed.Playlist, feed.OpUpdate)
	return it, nil
}

func (m *MemoryStore) DeletePlaylistItem(ctx context.Context, id int) error {
	m.mu.Lock()
	if _, ok := m.playlist[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.playlist, id)
	m.mu.Unlock()

	m.publish(feed.Playlist, feed.OpDelete)
	return nil
}

func (m *MemoryStore) GetPlaylistItem(ctx context.Context, id int) (model.PlaylistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.playlist[id]
	if !ok {
		return model.PlaylistItem{}, ErrNotFound
	}
	return it, nil
}

func (m *MemoryStore) ListPlaylistItems(ctx context.Context) ([]model.PlaylistItem, error) {
	items := m.playlistAscending()
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (m *MemoryStore) ListPlaylistForPlayback(ctx context.Context) ([]model.PlaylistItem, error) {
	return m.playlistAscending(), nil
}

func (m *MemoryStore) playlistAscending() []model.PlaylistItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.PlaylistItem, 0, len(m.playlist))
	for _, it := range m.playlist {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MemoryStore) GetFallback(ctx context.Context) (*model.FallbackContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fallback == nil {
		return nil, nil
	}
	cp := *m.fallback
	return &cp, nil
}

func (m *MemoryStore) SetFallback(ctx context.Context, content model.FallbackContent) (model.FallbackContent, error) {
	content, err := content.Normalize()
	if err != nil {
		return model.FallbackContent{}, err
	}

	m.mu.Lock()
	content.UpdatedAt = m.now().UTC()
	m.fallback = &content
	m.mu.Unlock()

	m.publish(feed.Fallback, feed.OpUpdate)
	return content, nil
}

func (m *MemoryStore) ClearFallback(ctx context.Context) error {
	m.mu.Lock()
	m.fallback = nil
	m.mu.Unlock()

	m.publish(feed.Fallback, feed.OpDelete)
	return nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return 0, &model.ValidationError{Field: "email", Message: "already registered"}
		}
	}
	now := m.now().UTC()
	u := model.User{ID: m.id(), Email: email, HashedPassword: hashedPassword, Name: name, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UpdateUserProfile(ctx context.Context, id int, email string, name *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Email, u.Name, u.UpdatedAt = email, name, m.now().UTC()
	m.users[id] = u
	return nil
}
