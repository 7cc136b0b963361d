package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/beacon/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/storage"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// 2025-03-14 08:00 UTC
var now = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	store  *db.MemoryStore
	router *gin.Engine
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := db.NewMemoryStore(nil).WithClock(func() time.Time { return now })
	userID, err := store.CreateUser(context.Background(), "ops@example.com", "x", nil)
	require.NoError(t, err)
	token, err := middleware.GenerateJWT(userID, secret)
	require.NoError(t, err)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: secret, Users: store},
		ScheduleModule(store, time.UTC, func() time.Time { return now }),
		PlaylistModule(store),
		FallbackModule(store),
		UploadModule(storage.NewLocalStorage(t.TempDir(), "/uploads")),
	)
	return &harness{t: t, store: store, router: r, token: token}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRequiresAuth(t *testing.T) {
	h := newHarness(t)
	h.token = "nope"
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/admin/schedule", nil).Code)
}

func TestScheduleConflictFlow(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/admin/schedule", gin.H{
		"title": "Standup", "url": "https://cdn.example.com/a.mp4",
		"date": "2025-03-14", "start_time": "10:00", "end_time": "10:30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[packets.ScheduleItemResponse](t, w)
	assert.Equal(t, "2025-03-14T10:00:00Z", first.Start)
	assert.Equal(t, model.ContentVideo, first.ContentType)

	// overlapping window is rejected and nothing is written
	w = h.do(http.MethodPost, "/api/admin/schedule", gin.H{
		"title": "Clash", "url": "https://cdn.example.com/b.mp4",
		"date": "2025-03-14", "start_time": "10:15", "duration_minutes": 30,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[api.APIError](t, w).Message, "Standup")

	items, err := h.store.ListScheduleItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// back to back is fine
	w = h.do(http.MethodPost, "/api/admin/schedule", gin.H{
		"title": "Next", "url": "https://cdn.example.com/c.mp4", "content_type": "image",
		"date": "2025-03-14", "start_time": "10:30", "end_time": "11:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// editing an item does not conflict with itself
	w = h.do(http.MethodPut, "/api/admin/schedule/"+itoa(first.ID), gin.H{
		"title": "Standup (long)", "url": "https://cdn.example.com/a.mp4",
		"date": "2025-03-14", "start_time": "09:45", "end_time": "10:30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Standup (long)", decode[packets.ScheduleItemResponse](t, w).Title)
}

func TestScheduleValidation(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing title", gin.H{"url": "https://cdn.example.com/a.mp4", "date": "2025-03-14", "start_time": "10:00", "end_time": "11:00"}, "title"},
		{"end before start", gin.H{"title": "x", "url": "https://cdn.example.com/a.mp4", "date": "2025-03-14", "start_time": "11:00", "end_time": "10:00"}, "end_time"},
		{"bad clock", gin.H{"title": "x", "url": "https://cdn.example.com/a.mp4", "date": "2025-03-14", "start_time": "25:00", "end_time": "26:00"}, "start_time"},
		{"in the past", gin.H{"title": "x", "url": "https://cdn.example.com/a.mp4", "date": "2025-03-13", "start_time": "10:00", "end_time": "11:00"}, "start_time"},
		{"bad type", gin.H{"title": "x", "url": "https://cdn.example.com/a.mp4", "content_type": "audio", "date": "2025-03-14", "start_time": "10:00", "end_time": "11:00"}, "content_type"},
		{"bad url", gin.H{"title": "x", "url": "ftp://cdn.example.com/a.mp4", "date": "2025-03-14", "start_time": "10:00", "end_time": "11:00"}, "url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := h.do(http.MethodPost, "/api/admin/schedule", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.field, decode[api.APIError](t, w).Field)
		})
	}
}

func TestScheduleListHidesFinished(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.store.CreateScheduleItem(ctx, model.ScheduleItemInput{
		Title: "old", URL: "https://cdn.example.com/o.mp4",
		StartTime: now.Add(-3 * time.Hour), EndTime: now.Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = h.store.CreateScheduleItem(ctx, model.ScheduleItemInput{
		Title: "on air", URL: "https://cdn.example.com/l.mp4",
		StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour),
	})
	require.NoError(t, err)

	list := decode[[]packets.ScheduleItemResponse](t, h.do(http.MethodGet, "/api/admin/schedule", nil))
	require.Len(t, list, 1)
	assert.Equal(t, "on air", list[0].Title)
	assert.Equal(t, "live", string(list[0].Status))

	list = decode[[]packets.ScheduleItemResponse](t, h.do(http.MethodGet, "/api/admin/schedule?include_finished=true", nil))
	require.Len(t, list, 2)
	assert.Equal(t, "finished", string(list[0].Status))
}

func TestConflictDryRun(t *testing.T) {
	h := newHarness(t)
	item, err := h.store.CreateScheduleItem(context.Background(), model.ScheduleItemInput{
		Title: "Keynote", URL: "https://cdn.example.com/k.mp4",
		StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour),
	})
	require.NoError(t, err)

	window := gin.H{"start": now.Add(150 * time.Minute), "end": now.Add(4 * time.Hour)}
	res := decode[packets.ConflictCheckResponse](t, h.do(http.MethodPost, "/api/admin/schedule/conflicts", window))
	assert.True(t, res.Conflict)
	require.NotNil(t, res.With)
	assert.Equal(t, item.ID, res.With.ID)

	window["exclude_id"] = item.ID
	res = decode[packets.ConflictCheckResponse](t, h.do(http.MethodPost, "/api/admin/schedule/conflicts", window))
	assert.False(t, res.Conflict)
}

func TestScheduleNotFound(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/admin/schedule/99", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/admin/schedule/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/admin/schedule/abc", nil).Code)
}

func TestPlaylistCRUD(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/admin/playlist", gin.H{
		"url": "https://drive.google.com/file/d/AbC_123/view?usp=sharing", "title": "Promo", "category": "ads",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[packets.PlaylistItemResponse](t, w)
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=AbC_123", created.URL)

	w = h.do(http.MethodPost, "/api/admin/playlist", gin.H{"url": "https://cdn.example.com/x.mp4", "title": "No category"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "category", decode[api.APIError](t, w).Field)

	w = h.do(http.MethodPut, "/api/admin/playlist/"+itoa(created.ID), gin.H{
		"url": "https://cdn.example.com/promo.mp4", "title": "Promo v2", "category": "ads",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Promo v2", decode[packets.PlaylistItemResponse](t, w).Title)

	list := decode[[]packets.PlaylistItemResponse](t, h.do(http.MethodGet, "/api/admin/playlist", nil))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/admin/playlist/"+itoa(created.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/admin/playlist/"+itoa(created.ID), nil).Code)
}

func TestFallbackLastWriteWins(t *testing.T) {
	h := newHarness(t)

	env := decode[packets.FallbackEnvelope](t, h.do(http.MethodGet, "/api/admin/fallback", nil))
	assert.Nil(t, env.Fallback)

	require.Equal(t, http.StatusOK, h.do(http.MethodPut, "/api/admin/fallback", gin.H{"type": "video", "url": "https://cdn.example.com/one.mp4"}).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, "/api/admin/fallback", gin.H{"type": "image", "url": "https://cdn.example.com/two.png"}).Code)

	env = decode[packets.FallbackEnvelope](t, h.do(http.MethodGet, "/api/admin/fallback", nil))
	require.NotNil(t, env.Fallback)
	assert.Equal(t, model.ContentImage, env.Fallback.Type)
	assert.Equal(t, "https://cdn.example.com/two.png", env.Fallback.URL)

	w := h.do(http.MethodPut, "/api/admin/fallback", gin.H{"url": "https://cdn.example.com/three.mp4"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "type", decode[api.APIError](t, w).Field)

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/admin/fallback", nil).Code)
	env = decode[packets.FallbackEnvelope](t, h.do(http.MethodGet, "/api/admin/fallback", nil))
	assert.Nil(t, env.Fallback)
}

func TestUpload(t *testing.T) {
	h := newHarness(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "lobby.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("frames"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	up := decode[storage.Upload](t, w)
	assert.Equal(t, model.ContentVideo, up.ContentType)
	assert.Contains(t, up.URL, "/uploads/lobby_")

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/admin/uploads", nil).Code)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
