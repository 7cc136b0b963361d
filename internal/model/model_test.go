package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMediaURL(t *testing.T) {
	got, err := NormalizeMediaURL("  https://cdn.example.com/a.mp4 ")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.mp4", got)

	got, err = NormalizeMediaURL("https://drive.google.com/file/d/1IpWBVYgzV5s4o_dx-y0Z/view?usp=sharing")
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=1IpWBVYgzV5s4o_dx-y0Z", got)

	for _, bad := range []string{"", "not a url", "ftp://example.com/a.mp4", "/relative/path.mp4"} {
		_, err := NormalizeMediaURL(bad)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "expected validation error for %q", bad)
	}
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType("")
	require.NoError(t, err)
	assert.Equal(t, ContentVideo, ct)

	ct, err = ParseContentType("IMAGE")
	require.NoError(t, err)
	assert.Equal(t, ContentImage, ct)

	_, err = ParseContentType("audio")
	assert.Error(t, err)
}

func TestScheduleItemInputNormalize(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := ScheduleItemInput{
		Title:     " Morning news ",
		URL:       "https://example.com/news.mp4",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	}

	out, err := in.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Morning news", out.Title)
	assert.Equal(t, ContentVideo, out.ContentType)

	in.EndTime = start
	_, err = in.Normalize()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "end_time", verr.Field)

	in.EndTime = start.Add(time.Hour)
	in.Title = "   "
	_, err = in.Normalize()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)
}

func TestPlaylistAndFallbackNormalize(t *testing.T) {
	_, err := PlaylistItemInput{URL: "https://example.com/a.mp4", Title: "A"}.Normalize()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "category", verr.Field)

	_, err = FallbackContent{URL: "https://example.com/a.png"}.Normalize()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "type", verr.Field)

	f, err := FallbackContent{Type: ContentImage, URL: "https://example.com/a.png"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, ContentImage, f.Type)
}

func TestWindowContainsIsInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(30 * time.Minute)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(30*time.Minute)))
	assert.False(t, w.Contains(start.Add(-time.Second)))
	assert.False(t, w.Contains(start.Add(31*time.Minute)))
}

func TestActiveContentEqual(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	items := []PlaylistItem{{ID: 1, URL: "https://example.com/1.mp4", CreatedAt: created}}

	assert.True(t, PlaylistContent(items).Equal(PlaylistContent([]PlaylistItem{items[0]})))
	assert.False(t, PlaylistContent(items).Equal(PlaylistContent(nil)))
	assert.True(t, NoContent().Equal(NoContent()))
	assert.False(t, NoContent().Equal(FallbackActive(FallbackContent{Type: ContentVideo, URL: "https://x.io/a"})))
}
