package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"emby-cdk-manager/internal/domain/model"
)

// mediaLinks builds public image and web client URLs for library items.
type mediaLinks struct {
	base string
}

func newMediaLinks(publicURL string) mediaLinks {
	return mediaLinks{base: strings.TrimRight(publicURL, "/")}
}

func (l mediaLinks) imageURL(itemID, kind, tag string, maxWidth int) string {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if maxWidth > 0 {
		q.Set("maxWidth", fmt.Sprint(maxWidth))
	}
	s := fmt.Sprintf("%s/Items/%s/Images/%s", l.base, url.PathEscape(itemID), kind)
	if len(q) > 0 {
		s += "?" + q.Encode()
	}
	return s
}

// posterURL prefers the item's own primary image and falls back to the parent's backdrop.
func (l mediaLinks) posterURL(it *model.LibraryItem) string {
	if tag := it.ImageTags["Primary"]; tag != "" {
		return l.imageURL(it.ID, "Primary", tag, 500)
	}
	if len(it.ParentBackdropImageTags) > 0 {
		parent := orDefault(it.SeriesID, it.ParentID)
		if parent != "" {
			return l.imageURL(parent, "Backdrop", it.ParentBackdropImageTags[0], 500) + "&quality=70"
		}
	}
	return ""
}

func (l mediaLinks) backdropURL(it *model.LibraryItem) string {
	if len(it.BackdropImageTags) == 0 {
		return ""
	}
	return l.imageURL(it.ID, "Backdrop", it.BackdropImageTags[0], 1920)
}

func (l mediaLinks) primaryURL(it *model.LibraryItem) string {
	tag := it.ImageTags["Primary"]
	if tag == "" {
		return ""
	}
	return l.imageURL(it.ID, "Primary", tag, 0)
}

func (l mediaLinks) webURL(it *model.LibraryItem, serverID string) string {
	s := fmt.Sprintf("%s/web/index.html#!/item?id=%s&serverId=%s", l.base, url.QueryEscape(it.ID), url.QueryEscape(serverID))
	switch it.Type {
	case "Series", "Season", "Episode":
		s += "&context=home"
	}
	return s
}

// libraryURL opens a library view in the web client.
func (l mediaLinks) libraryURL(viewID, serverID string) string {
	return fmt.Sprintf("%s/web/index.html#!/videos?serverId=%s&parentId=%s", l.base, url.QueryEscape(serverID), url.QueryEscape(viewID))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
