package usecase

import (
	"context"
	"strings"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SystemConfigUseCase = (*systemConfigUC)(nil)

type SystemConfigUseCase interface {
	List(ctx context.Context) ([]*model.SystemConfig, error)
	Upsert(ctx context.Context, key, value string, description *string) (*model.SystemConfig, error)
}

type systemConfigUC struct {
	configs repository.SystemConfigRepository
	log     *zerolog.Logger
	now     func() time.Time
}

func NewSystemConfigUseCase(configs repository.SystemConfigRepository, logger *zerolog.Logger, opts ...Option) *systemConfigUC {
	o := buildOptions(opts)
	return &systemConfigUC{configs: configs, log: logger, now: o.now}
}

func (u *systemConfigUC) List(ctx context.Context) ([]*model.SystemConfig, error) {
	return u.configs.ListAll(ctx, repository.NoTX)
}

func (u *systemConfigUC) Upsert(ctx context.Context, key, value string, description *string) (*model.SystemConfig, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrInvalidArgument
	}
	c := &model.SystemConfig{Key: key, Value: value, Description: description, UpdatedAt: u.now()}
	if err := u.configs.Upsert(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	u.log.Info().Str("key", key).Msg("system config updated")
	return c, nil
}
