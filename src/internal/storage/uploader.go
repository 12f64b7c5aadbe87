package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

type MediaKind string

const (
	MediaMusic MediaKind = "music"
	MediaPhoto MediaKind = "photo"
)

// ObjectKey builds teams/<team>/<kind>/<uuid><ext>. The original file name
// only contributes its extension.
func ObjectKey(teamID string, kind MediaKind, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join("teams", teamID, string(kind), uuid.New().String()+ext)
}

// KeyFromURL recovers the key of an object stored for teamID from its public
// URL. ok is false for links that do not point at one of the team's objects.
func KeyFromURL(teamID, rawURL string) (key string, ok bool) {
	if teamID == "" || rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, "/")
	prefix := path.Join("teams", teamID) + "/"
	i := strings.Index(p, prefix)
	if i < 0 || (i > 0 && p[i-1] != '/') {
		return "", false
	}
	key = p[i:]
	if key == prefix || path.Clean(key) != key {
		return "", false
	}
	return key, true
}
