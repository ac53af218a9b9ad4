package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ MediaUseCase = (*mediaUC)(nil)

const (
	EventLibraryNew    = "library.new"
	DefaultLatestLimit = 10
	MaxLatestLimit     = 50
)

// MediaUseCase records newly added library items announced by the media server.
type MediaUseCase interface {
	// HandleLibraryEvent stores the item of a library.new event. Other events are ignored
	// (ok=false, no error); an already-known item returns the stored copy with ok=false.
	HandleLibraryEvent(ctx context.Context, ev LibraryEvent) (item *model.MediaItem, ok bool, err error)
	Latest(ctx context.Context, limit int) ([]*model.MediaItem, error)
}

// LibraryEvent is the subset of the media server webhook payload we consume.
type LibraryEvent struct {
	Event            string       `json:"Event"`
	NotificationType string       `json:"NotificationType"`
	Item             *LibraryItem `json:"Item"`
}

type LibraryItem = model.LibraryItem

type mediaUC struct {
	mediaLinks
	items  repository.MediaItemRepository
	server adapter.ServerIdentity
	log    *zerolog.Logger
	now    func() time.Time
}

func NewMediaUseCase(items repository.MediaItemRepository, server adapter.ServerIdentity, publicURL string, logger *zerolog.Logger, opts ...Option) *mediaUC {
	o := buildOptions(opts)
	return &mediaUC{
		mediaLinks: newMediaLinks(publicURL),
		items:      items,
		server:     server,
		log:        logger,
		now:        o.now,
	}
}

func (u *mediaUC) HandleLibraryEvent(ctx context.Context, ev LibraryEvent) (*model.MediaItem, bool, error) {
	defer logging.TraceDuration(u.log, "MediaUC.HandleLibraryEvent")()

	name := ev.Event
	if name == "" {
		name = ev.NotificationType
	}
	if name != EventLibraryNew {
		u.log.Debug().Str("event", name).Msg("webhook event ignored")
		return nil, false, nil
	}
	if ev.Item == nil || ev.Item.ID == "" {
		return nil, false, fmt.Errorf("%w: item id is required", domain.ErrInvalidArgument)
	}
	it := ev.Item

	existing, err := u.items.FindByEmbyID(ctx, repository.NoTX, it.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	serverID, err := u.server.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	m := &model.MediaItem{
		ID:          uuid.NewString(),
		EmbyID:      it.ID,
		Name:        orDefault(it.Name, "Unknown"),
		Type:        orDefault(it.Type, "Unknown"),
		DateCreated: u.now(),
		PosterURL:   nonEmpty(u.posterURL(it)),
		WebURL:      nonEmpty(u.webURL(it, serverID)),
	}
	if it.Overview != "" {
		m.Overview = &it.Overview
	}
	if it.ProductionYear > 0 {
		y := it.ProductionYear
		m.ProductionYear = &y
	}
	if it.DateCreated != nil {
		m.DateCreated = *it.DateCreated
	}
	m.BackdropURL = nonEmpty(u.backdropURL(it))

	if err := u.items.Create(ctx, repository.NoTX, m); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, ferr := u.items.FindByEmbyID(ctx, repository.NoTX, it.ID)
			return existing, false, ferr
		}
		return nil, false, err
	}
	u.log.Info().Str("emby_id", m.EmbyID).Str("name", m.Name).Str("type", m.Type).Msg("media item recorded")
	return m, true, nil
}

func (u *mediaUC) Latest(ctx context.Context, limit int) ([]*model.MediaItem, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	if limit > MaxLatestLimit {
		limit = MaxLatestLimit
	}
	return u.items.Latest(ctx, repository.NoTX, limit)
}
