package repository

import (
	"context"

	"emby-cdk-manager/internal/domain/model"
)

type TemplateRepository interface {
	Create(ctx context.Context, tx Tx, t *model.Template) error
	Update(ctx context.Context, tx Tx, t *model.Template) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Template, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Template, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
