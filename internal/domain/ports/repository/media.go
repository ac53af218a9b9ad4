package repository

import (
	"context"

	"emby-cdk-manager/internal/domain/model"
)

type MediaItemRepository interface {
	// Create inserts the item; a known emby id yields domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, m *model.MediaItem) error
	FindByEmbyID(ctx context.Context, tx Tx, embyID string) (*model.MediaItem, error)
	// Latest returns items ordered by DateCreated desc.
	Latest(ctx context.Context, tx Tx, limit int) ([]*model.MediaItem, error)
}

type SystemConfigRepository interface {
	ListAll(ctx context.Context, tx Tx) ([]*model.SystemConfig, error)
	Upsert(ctx context.Context, tx Tx, c *model.SystemConfig) error
}
