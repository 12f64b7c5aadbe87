package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/teams/t1/music/a.mp3", PublicURL("https://cdn.example.com", "teams/t1/music/a.mp3"))
	assert.Equal(t, "https://cdn.example.com/media/teams/a.jpg", PublicURL("https://cdn.example.com/media/", "/teams/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/media/teams/a.jpg", PublicURL("https://cdn.example.com/media", "teams/a.jpg"))
	assert.Empty(t, PublicURL("", "teams/a.jpg"))
	assert.Empty(t, PublicURL("https://cdn.example.com", ""))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("t1", MediaMusic, "My Song.MP3")

	assert.True(t, strings.HasPrefix(key, "teams/t1/music/"), key)
	assert.True(t, strings.HasSuffix(key, ".mp3"), key)
	assert.NotContains(t, key, "My Song")
}

func TestKeyFromURL(t *testing.T) {
	key := ObjectKey("t1", MediaPhoto, "team.png")

	got, ok := KeyFromURL("t1", PublicURL("https://cdn.example.com", key))
	assert.True(t, ok)
	assert.Equal(t, key, got)

	got, ok = KeyFromURL("t1", PublicURL("https://cdn.example.com/media/", key))
	assert.True(t, ok)
	assert.Equal(t, key, got)

	for _, raw := range []string{
		"",
		"https://youtube.com/watch?v=abc",
		PublicURL("https://cdn.example.com", ObjectKey("t2", MediaPhoto, "a.png")),
		"https://cdn.example.com/teams/t1/",
		"https://cdn.example.com/xteams/t1/photo/a.png",
		"https://cdn.example.com/teams/t1/../t2/photo/a.png",
	} {
		_, ok := KeyFromURL("t1", raw)
		assert.False(t, ok, raw)
	}
}
