package repository

import (
	"context"
	"time"

	"emby-cdk-manager/internal/domain/model"
)

// CDKRepository is the port for the code registry's storage.
type CDKRepository interface {
	// CreateBatch inserts all codes; a duplicate code yields domain.ErrAlreadyExists.
	CreateBatch(ctx context.Context, tx Tx, cdks []*model.CDK) error
	// FindByCode returns the code in any status, or domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.CDK, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.CDK, error)
	// List returns codes newest first with used-by username and template name joined.
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.CDK, error)
	// MarkUsed is a compare-and-swap on status = unused. It reports false when another
	// writer got there first (or the code expired), and leaves the row untouched.
	MarkUsed(ctx context.Context, tx Tx, id, accountID string, at time.Time) (bool, error)
	// MarkExpired is a compare-and-swap unused -> expired.
	MarkExpired(ctx context.Context, tx Tx, id string) (bool, error)
	Delete(ctx context.Context, tx Tx, id string) error
	// CountByTemplate returns how many codes reference the template and how many of them are used.
	CountByTemplate(ctx context.Context, tx Tx, templateID string) (total int, used int, err error)
}
