package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ BrowseUseCase = (*browseUC)(nil)

const (
	// ConfigLoginBackgroundLibrary names the system config entry that restricts login
	// backgrounds to one library.
	ConfigLoginBackgroundLibrary = "login_background_library_id"
	backdropCandidateLimit       = 20
)

// BrowseUseCase exposes the media server library to signed-in users, acting with the
// remote session stored at their last login.
type BrowseUseCase interface {
	Shelf(ctx context.Context, accountID string, shelf model.Shelf) ([]BrowseItem, error)
	Views(ctx context.Context, accountID string) (*ViewList, error)
	Libraries(ctx context.Context) ([]model.Library, error)
	// LoginBackground opens a random backdrop. The caller closes the body.
	LoginBackground(ctx context.Context) (*model.Image, error)
}

// BrowseItem is a library item with public links resolved.
type BrowseItem struct {
	ID              string
	Name            string
	Type            string
	Overview        string
	ProductionYear  int
	PosterURL       string
	BackdropURL     string
	PrimaryImageURL string
	WebURL          string
}

type LibraryView struct {
	ID              string
	Name            string
	CollectionType  string
	PrimaryImageURL string
	LibraryURL      string
}

type ViewList struct {
	ServerID string
	Views    []LibraryView
}

type browseUC struct {
	mediaLinks
	accounts repository.AccountRepository
	configs  repository.SystemConfigRepository
	browser  adapter.MediaBrowser
	server   adapter.ServerIdentity
	log      *zerolog.Logger
}

func NewBrowseUseCase(
	accounts repository.AccountRepository,
	configs repository.SystemConfigRepository,
	browser adapter.MediaBrowser,
	server adapter.ServerIdentity,
	publicURL string,
	logger *zerolog.Logger,
) *browseUC {
	return &browseUC{
		mediaLinks: newMediaLinks(publicURL),
		accounts:   accounts,
		configs:    configs,
		browser:    browser,
		server:     server,
		log:        logger,
	}
}

func (u *browseUC) Shelf(ctx context.Context, accountID string, shelf model.Shelf) ([]BrowseItem, error) {
	defer logging.TraceDuration(u.log, "BrowseUC.Shelf")()
	if !shelf.Valid() {
		return nil, fmt.Errorf("%w: unknown shelf %q", domain.ErrInvalidArgument, shelf)
	}
	userID, token, err := u.remoteSession(ctx, accountID)
	if err != nil {
		return nil, err
	}
	items, err := u.browser.UserShelf(ctx, userID, token, shelf)
	if err != nil {
		return nil, err
	}
	serverID, err := u.server.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BrowseItem, 0, len(items))
	for i := range items {
		it := &items[i]
		out = append(out, BrowseItem{
			ID:              it.ID,
			Name:            it.Name,
			Type:            it.Type,
			Overview:        it.Overview,
			ProductionYear:  it.ProductionYear,
			PosterURL:       u.posterURL(it),
			BackdropURL:     u.backdropURL(it),
			PrimaryImageURL: u.primaryURL(it),
			WebURL:          u.webURL(it, serverID),
		})
	}
	return out, nil
}

func (u *browseUC) Views(ctx context.Context, accountID string) (*ViewList, error) {
	defer logging.TraceDuration(u.log, "BrowseUC.Views")()
	userID, token, err := u.remoteSession(ctx, accountID)
	if err != nil {
		return nil, err
	}
	items, err := u.browser.UserViews(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	serverID, err := u.server.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := &ViewList{ServerID: serverID, Views: make([]LibraryView, 0, len(items))}
	for i := range items {
		it := &items[i]
		out.Views = append(out.Views, LibraryView{
			ID:              it.ID,
			Name:            it.Name,
			CollectionType:  it.CollectionType,
			PrimaryImageURL: u.primaryURL(it),
			LibraryURL:      u.libraryURL(it.ID, serverID),
		})
	}
	return out, nil
}

func (u *browseUC) Libraries(ctx context.Context) ([]model.Library, error) {
	defer logging.TraceDuration(u.log, "BrowseUC.Libraries")()
	return u.browser.Libraries(ctx)
}

func (u *browseUC) LoginBackground(ctx context.Context) (*model.Image, error) {
	parentID, err := u.backgroundLibrary(ctx)
	if err != nil {
		return nil, err
	}
	items, err := u.browser.BackdropCandidates(ctx, parentID, backdropCandidateLimit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no item with a backdrop", domain.ErrNotFound)
	}
	pick := items[rand.IntN(len(items))]
	return u.browser.Backdrop(ctx, pick.ID)
}

func (u *browseUC) backgroundLibrary(ctx context.Context) (string, error) {
	configs, err := u.configs.ListAll(ctx, repository.NoTX)
	if err != nil {
		return "", err
	}
	for _, c := range configs {
		if c.Key == ConfigLoginBackgroundLibrary {
			return strings.TrimSpace(c.Value), nil
		}
	}
	return "", nil
}

// remoteSession loads the remote id and token stored at the last login.
func (u *browseUC) remoteSession(ctx context.Context, accountID string) (string, string, error) {
	userID, token, err := u.accounts.ExternalSession(ctx, repository.NoTX, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", "", domain.ErrForbidden
	}
	if err != nil {
		return "", "", err
	}
	if userID == "" || token == "" {
		return "", "", domain.ErrRemoteSessionExpired
	}
	return userID, token, nil
}
