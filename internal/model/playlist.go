package model

import "time"

// PlaylistItem is a fallback video, played in insertion order when no schedule
// window is open.
type PlaylistItem struct {
	ID        int       `db:"id"         json:"id"`
	URL       string    `db:"url"        json:"url"`
	Title     string    `db:"title"      json:"title"`
	Category  string    `db:"category"   json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type PlaylistItemInput struct {
	URL      string
	Title    string
	Category string
}

func (in PlaylistItemInput) Normalize() (PlaylistItemInput, error) {
	u, err := NormalizeMediaURL(in.URL)
	if err != nil {
		return in, err
	}
	title, err := requireText("title", in.Title)
	if err != nil {
		return in, err
	}
	category, err := requireText("category", in.Category)
	if err != nil {
		return in, err
	}
	return PlaylistItemInput{URL: u, Title: title, Category: category}, nil
}
