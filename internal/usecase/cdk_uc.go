package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CDKUseCase = (*cdkUC)(nil)

// CDKUseCase is the code registry: it mints codes and decides whether one may be redeemed.
type CDKUseCase interface {
	Generate(ctx context.Context, req GenerateRequest) ([]*model.CDK, error)
	// Validate returns the code if it is unused and inside its window. A code found past
	// its window is moved unused->expired as a side effect.
	Validate(ctx context.Context, code string) (*model.CDK, error)
	List(ctx context.Context, offset, limit int) ([]*model.CDK, error)
	Delete(ctx context.Context, id string) error
}

// GenerateRequest describes one batch. Entitlement is either MemberValidDays or TemplateID;
// the template wins when both are set.
type GenerateRequest struct {
	Count           int
	CDKValidDays    *int
	MemberValidDays *int
	TemplateID      string
	CreatedBy       string
}

// CDKSettings are the registry's administrative bounds and defaults.
type CDKSettings struct {
	Prefix                 string
	MaxBatch               int
	DefaultCDKValidDays    int
	DefaultMemberValidDays int
}

const maxCodeCollisionRetries = 3

type cdkUC struct {
	cdks      repository.CDKRepository
	templates repository.TemplateRepository
	tm        repository.TransactionManager
	settings  CDKSettings
	log       *zerolog.Logger
	now       func() time.Time
}

func NewCDKUseCase(
	cdks repository.CDKRepository,
	templates repository.TemplateRepository,
	tm repository.TransactionManager,
	settings CDKSettings,
	logger *zerolog.Logger,
	opts ...Option,
) *cdkUC {
	o := buildOptions(opts)
	if settings.Prefix == "" {
		settings.Prefix = "EMBY"
	}
	if settings.MaxBatch <= 0 {
		settings.MaxBatch = 50
	}
	if settings.DefaultCDKValidDays <= 0 {
		settings.DefaultCDKValidDays = 365
	}
	if settings.DefaultMemberValidDays <= 0 {
		settings.DefaultMemberValidDays = 30
	}
	return &cdkUC{
		cdks:      cdks,
		templates: templates,
		tm:        tm,
		settings:  settings,
		log:       logger,
		now:       o.now,
	}
}

func (u *cdkUC) Generate(ctx context.Context, req GenerateRequest) ([]*model.CDK, error) {
	defer logging.TraceDuration(u.log, "CDKUC.Generate")()

	if req.Count < 1 || req.Count > u.settings.MaxBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidArgument, u.settings.MaxBatch)
	}
	cdkValidDays := u.settings.DefaultCDKValidDays
	if req.CDKValidDays != nil {
		if *req.CDKValidDays <= 0 {
			return nil, fmt.Errorf("%w: cdkValidDays must be positive", domain.ErrInvalidArgument)
		}
		cdkValidDays = *req.CDKValidDays
	}

	memberDays := u.settings.DefaultMemberValidDays
	var templateID *string
	switch {
	case req.TemplateID != "":
		tpl, err := u.templates.FindByID(ctx, repository.NoTX, req.TemplateID)
		if err != nil {
			return nil, err
		}
		memberDays = tpl.ValidDays
		templateID = &tpl.ID
	case req.MemberValidDays != nil:
		if *req.MemberValidDays < 0 {
			return nil, fmt.Errorf("%w: memberValidDays must be >= 0", domain.ErrInvalidArgument)
		}
		memberDays = *req.MemberValidDays
	}

	var createdBy *string
	if req.CreatedBy != "" {
		createdBy = &req.CreatedBy
	}

	now := u.now()
	batchID := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()

	var batch []*model.CDK
	var err error
	for attempt := 0; attempt < maxCodeCollisionRetries; attempt++ {
		batch, err = u.buildBatch(req.Count, batchID, now, cdkValidDays, memberDays, templateID, createdBy)
		if err != nil {
			return nil, err
		}
		err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			return u.cdks.CreateBatch(ctx, tx, batch)
		})
		if !errors.Is(err, domain.ErrAlreadyExists) {
			break
		}
		u.log.Warn().Int("attempt", attempt+1).Msg("cdk code collision; regenerating batch")
	}
	if err != nil {
		return nil, err
	}

	metrics.AddCDKGenerated(len(batch))
	u.log.Info().
		Str("batch_id", batchID).
		Int("count", len(batch)).
		Int("member_valid_days", memberDays).
		Int("cdk_valid_days", cdkValidDays).
		Msg("cdk batch generated")
	return batch, nil
}

func (u *cdkUC) buildBatch(count int, batchID string, now time.Time, cdkDays, memberDays int, templateID, createdBy *string) ([]*model.CDK, error) {
	seen := make(map[string]struct{}, count)
	out := make([]*model.CDK, 0, count)
	for len(out) < count {
		code, err := generateCDKCode(u.settings.Prefix)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, &model.CDK{
			ID:              ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
			Code:            code,
			Status:          model.CDKStatusUnused,
			BatchID:         batchID,
			CreatedAt:       now,
			CDKValidDays:    cdkDays,
			MemberValidDays: memberDays,
			TemplateID:      templateID,
			CreatedBy:       createdBy,
		})
	}
	return out, nil
}

func (u *cdkUC) Validate(ctx context.Context, code string) (*model.CDK, error) {
	return u.validate(ctx, repository.NoTX, code)
}

// validate is shared with the redemption engine, which runs it inside its own tx.
func (u *cdkUC) validate(ctx context.Context, tx repository.Tx, code string) (*model.CDK, error) {
	c, err := u.cdks.FindByCode(ctx, tx, normalizeCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	if err := c.Check(u.now()); err != nil {
		if errors.Is(err, domain.ErrCodeExpired) && c.Status == model.CDKStatusUnused {
			u.expireLazily(ctx, tx, c)
		}
		return nil, err
	}
	return c, nil
}

// expireLazily records unused->expired. Failing to record it only costs a repeat check later.
func (u *cdkUC) expireLazily(ctx context.Context, tx repository.Tx, c *model.CDK) {
	changed, err := u.cdks.MarkExpired(ctx, tx, c.ID)
	if err != nil {
		u.log.Warn().Err(err).Str("cdk_id", c.ID).Msg("failed to mark cdk expired")
		return
	}
	if changed {
		c.Status = model.CDKStatusExpired
		metrics.IncCDKLazyExpired()
		u.log.Info().Str("cdk_id", c.ID).Time("redeem_by", c.RedeemBy()).Msg("cdk expired")
	}
}

func (u *cdkUC) List(ctx context.Context, offset, limit int) ([]*model.CDK, error) {
	if offset < 0 || limit < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.cdks.List(ctx, repository.NoTX, offset, limit)
}

func (u *cdkUC) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.cdks.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	u.log.Info().Str("cdk_id", id).Msg("cdk deleted")
	return nil
}
