package emby

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
)

var _ adapter.MediaBrowser = (*Gateway)(nil)

const itemFields = "PrimaryImageAspectRatio,Overview,BackdropImageTags,ProductionYear"

type itemsDTO struct {
	Items []model.LibraryItem `json:"Items"`
}

type virtualFolderDTO struct {
	Name           string   `json:"Name"`
	ItemID         string   `json:"ItemId"`
	CollectionType string   `json:"CollectionType"`
	Locations      []string `json:"Locations"`
}

// shelfRequest returns the per-user path and query of a home row, matching what the
// Emby web client asks for.
func shelfRequest(userID string, shelf model.Shelf) (string, url.Values, bool) {
	q := url.Values{}
	q.Set("Fields", itemFields)
	switch shelf {
	case model.ShelfLatest:
		q.Set("Limit", "30")
		q.Set("ImageTypeLimit", "1")
		q.Set("EnableImageTypes", "Primary,Backdrop,Banner,Thumb")
		return userPath(userID, "Items/Latest"), q, true
	case model.ShelfResume:
		q.Set("Recursive", "true")
		q.Set("MediaTypes", "Video")
		q.Set("Limit", "12")
		return userPath(userID, "Items/Resume"), q, true
	case model.ShelfPopular:
		q.Set("SortBy", "PlayCount")
		q.Set("SortOrder", "Descending")
		q.Set("Recursive", "true")
		q.Set("IncludeItemTypes", "Movie,Series,Episode")
		q.Set("MinPlays", "1")
		q.Set("Limit", "20")
		return userPath(userID, "Items"), q, true
	case model.ShelfRecent:
		q.Set("SortBy", "DatePlayed")
		q.Set("SortOrder", "Descending")
		q.Set("Recursive", "true")
		q.Set("Filters", "IsPlayed")
		q.Set("Limit", "20")
		return userPath(userID, "Items"), q, true
	}
	return "", nil, false
}

// UserShelf lists one home row as the user sees it.
func (g *Gateway) UserShelf(ctx context.Context, userID, token string, shelf model.Shelf) ([]model.LibraryItem, error) {
	path, q, ok := shelfRequest(userID, shelf)
	if !ok {
		return nil, fmt.Errorf("%w: unknown shelf %q", domain.ErrInvalidArgument, shelf)
	}
	op := "shelf_" + string(shelf)
	if token == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrRemoteSessionExpired, op)
	}
	// the latest endpoint answers with a bare array
	if shelf == model.ShelfLatest {
		var items []model.LibraryItem
		if err := g.callAs(ctx, op, token, http.MethodGet, path, q, nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var out itemsDTO
	if err := g.callAs(ctx, op, token, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (g *Gateway) UserViews(ctx context.Context, userID, token string) ([]model.LibraryItem, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: user_views", domain.ErrRemoteSessionExpired)
	}
	var out itemsDTO
	if err := g.callAs(ctx, "user_views", token, http.MethodGet, userPath(userID, "Views"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Libraries reads the virtual folders and falls back to top-level collection folders
// on servers that refuse that endpoint to the API key.
func (g *Gateway) Libraries(ctx context.Context) ([]model.Library, error) {
	var folders []virtualFolderDTO
	err := g.call(ctx, "libraries", http.MethodGet, "/Library/VirtualFolders", nil, &folders)
	if err == nil {
		out := make([]model.Library, 0, len(folders))
		for _, f := range folders {
			out = append(out, model.Library{ID: f.ItemID, Name: f.Name, CollectionType: f.CollectionType, Locations: f.Locations})
		}
		return out, nil
	}
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Status == 0 {
		return nil, err
	}
	g.logger.Debug().Err(err).Msg("virtual folders unavailable, listing collection folders")

	q := url.Values{}
	q.Set("Recursive", "false")
	q.Set("IncludeItemTypes", "CollectionFolder")
	var items itemsDTO
	if err := g.callAs(ctx, "libraries_fallback", "", http.MethodGet, "/Items", q, nil, &items); err != nil {
		return nil, err
	}
	out := make([]model.Library, 0, len(items.Items))
	for _, it := range items.Items {
		out = append(out, model.Library{ID: it.ID, Name: it.Name, CollectionType: it.CollectionType})
	}
	return out, nil
}

func (g *Gateway) BackdropCandidates(ctx context.Context, parentID string, limit int) ([]model.LibraryItem, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{}
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Movie,Series")
	q.Set("ImageTypes", "Backdrop")
	q.Set("SortBy", "Random")
	q.Set("Limit", strconv.Itoa(limit))
	if parentID != "" {
		q.Set("ParentId", parentID)
	}
	var out itemsDTO
	if err := g.callAs(ctx, "backdrop_candidates", "", http.MethodGet, "/Items", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Backdrop opens the first backdrop of itemID scaled for a full-screen background.
func (g *Gateway) Backdrop(ctx context.Context, itemID string) (img *model.Image, err error) {
	start := time.Now()
	defer func() { g.observe("backdrop", start, err) }()

	q := url.Values{}
	q.Set("MaxHeight", "1080")
	q.Set("Quality", "90")
	resp, err := g.send(ctx, "backdrop", "", http.MethodGet, "/Items/"+url.PathEscape(itemID)+"/Images/Backdrop/0", q, nil)
	if err != nil {
		return nil, err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/jpeg"
	}
	return &model.Image{ContentType: ct, Body: resp.Body}, nil
}
