package model

import "time"

// MediaItem is a library entry announced by the media server webhook.
type MediaItem struct {
	ID             string
	EmbyID         string
	Name           string
	Overview       *string
	Type           string
	ProductionYear *int
	DateCreated    time.Time
	BackdropURL    *string
	PosterURL      *string
	WebURL         *string
}

// SystemConfig is a free-form key/value setting managed by admins.
type SystemConfig struct {
	Key         string
	Value       string
	Description *string
	UpdatedAt   time.Time
}
