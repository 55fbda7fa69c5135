package services

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

var (
	imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true, ".heif": true, ".bmp": true}
	videoExts = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".avi": true, ".mkv": true, ".m4v": true, ".3gp": true}
)

// InferMediaType guesses image or video from the URI's extension, then from an
// /image/ or /video/ path segment as produced by the upload key layout.
func InferMediaType(uri string) (models.MediaType, bool) {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))

	switch {
	case imageExts[ext]:
		return models.MediaImage, true
	case videoExts[ext]:
		return models.MediaVideo, true
	}
	if ext != "" {
		ct := mime.TypeByExtension(ext)
		switch {
		case strings.HasPrefix(ct, "image/"):
			return models.MediaImage, true
		case strings.HasPrefix(ct, "video/"):
			return models.MediaVideo, true
		}
	}

	lower := strings.ToLower(p)
	switch {
	case strings.Contains(lower, "/video/"):
		return models.MediaVideo, true
	case strings.Contains(lower, "/image/"):
		return models.MediaImage, true
	}
	return "", false
}
