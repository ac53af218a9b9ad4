package adapter

import (
	"context"

	"emby-cdk-manager/internal/domain/model"
)

// MediaBrowser reads library content from the media server.
// User-scoped calls act with the user's own remote session token, and a token the
// server refuses yields domain.ErrRemoteSessionExpired. Other failures are
// *domain.GatewayError.
type MediaBrowser interface {
	UserShelf(ctx context.Context, userID, token string, shelf model.Shelf) ([]model.LibraryItem, error)
	UserViews(ctx context.Context, userID, token string) ([]model.LibraryItem, error)

	// Libraries lists the server's media folders with the API key.
	Libraries(ctx context.Context) ([]model.Library, error)
	// BackdropCandidates returns random movies and series that carry a backdrop,
	// optionally restricted to one library.
	BackdropCandidates(ctx context.Context, parentID string, limit int) ([]model.LibraryItem, error)
	Backdrop(ctx context.Context, itemID string) (*model.Image, error)
}
