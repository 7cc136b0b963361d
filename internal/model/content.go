package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ContentType is the media kind an asset renders as.
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
)

func (t ContentType) Valid() bool {
	return t == ContentVideo || t == ContentImage
}

// ParseContentType accepts "video"/"image" in any case. Empty input defaults to video,
// which is what older schedule rows without a type were.
func ParseContentType(raw string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "video":
		return ContentVideo, nil
	case "image":
		return ContentImage, nil
	}
	return "", &ValidationError{Field: "content_type", Message: fmt.Sprintf("unsupported content type %q", raw)}
}

var driveFileLink = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)

// NormalizeMediaURL validates an asset URL and rewrites Google Drive share links
// into their direct-download form so <video> and <img> can load them.
func NormalizeMediaURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Field: "url", Message: "is required"}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &ValidationError{Field: "url", Message: "must be an absolute http(s) URL"}
	}

	if m := driveFileLink.FindStringSubmatch(raw); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1], nil
	}
	return raw, nil
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &ValidationError{Field: field, Message: "is required"}
	}
	return value, nil
}
