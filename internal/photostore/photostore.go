package photostore

import (
	"context"
	"io"
	"strings"
)

// URLPrefix is the path under which stored photos are served; a meal's
// imageUrl is URLPrefix followed by the storage key.
const URLPrefix = "/photos/"

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// URLFor returns the imageUrl for a storage key.
func URLFor(storageKey string) string {
	return URLPrefix + storageKey
}

// KeyFromURL extracts the storage key from an imageUrl produced by URLFor.
// ok is false for URLs that do not point into the photo store.
func KeyFromURL(imageURL string) (string, bool) {
	key, ok := strings.CutPrefix(imageURL, URLPrefix)
	if !ok || key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}
