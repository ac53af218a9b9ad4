package model

import (
	"io"
	"time"
)

// Shelf is one of the per-user home rows the media server can list.
type Shelf string

const (
	ShelfLatest  Shelf = "latest"
	ShelfResume  Shelf = "resume"
	ShelfPopular Shelf = "popular"
	ShelfRecent  Shelf = "recent"
)

func (s Shelf) Valid() bool {
	switch s {
	case ShelfLatest, ShelfResume, ShelfPopular, ShelfRecent:
		return true
	}
	return false
}

// LibraryItem is a media server item as its REST API and webhooks describe it.
type LibraryItem struct {
	ID                      string            `json:"Id"`
	Name                    string            `json:"Name"`
	Overview                string            `json:"Overview"`
	Type                    string            `json:"Type"`
	CollectionType          string            `json:"CollectionType"`
	ProductionYear          int               `json:"ProductionYear"`
	DateCreated             *time.Time        `json:"DateCreated"`
	ImageTags               map[string]string `json:"ImageTags"`
	BackdropImageTags       []string          `json:"BackdropImageTags"`
	ParentBackdropImageTags []string          `json:"ParentBackdropImageTags"`
	SeriesID                string            `json:"SeriesId"`
	ParentID                string            `json:"ParentId"`
}

// Library is a top-level media folder.
type Library struct {
	ID             string
	Name           string
	CollectionType string
	Locations      []string
}

// Image is a streamed image body. The receiver closes Body.
type Image struct {
	ContentType string
	Body        io.ReadCloser
}
