package model

import "time"

// FallbackKey is the primary key of the single fallback row.
const FallbackKey = "default"

// FallbackContent is the default asset, shown when nothing is scheduled and the
// playlist is empty. At most one exists; writes replace it.
type FallbackContent struct {
	Type      ContentType `db:"type"       json:"type"`
	URL       string      `db:"url"        json:"url"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

func (f FallbackContent) Normalize() (FallbackContent, error) {
	if !f.Type.Valid() {
		return f, &ValidationError{Field: "type", Message: "must be video or image"}
	}
	u, err := NormalizeMediaURL(f.URL)
	if err != nil {
		return f, err
	}
	f.URL = u
	return f, nil
}
