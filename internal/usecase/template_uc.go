package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ TemplateUseCase = (*templateUC)(nil)

// TemplateUseCase manages the policy/configuration bundles applied to provisioned accounts.
type TemplateUseCase interface {
	List(ctx context.Context) ([]*model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
	Create(ctx context.Context, in TemplateInput) (*model.Template, error)
	// Update refuses with domain.ErrTemplateInUse once a redeemed code references the template.
	Update(ctx context.Context, id string, in TemplateInput) (*model.Template, error)
	// Delete refuses with domain.ErrTemplateInUse while any code references the template.
	Delete(ctx context.Context, id string) error
}

// TemplateInput carries a create or partial update. Nil fields are left unchanged.
type TemplateInput struct {
	Name          *string
	Description   *string
	ValidDays     *int
	Policy        *model.Policy
	Configuration *model.Configuration
}

type templateUC struct {
	templates repository.TemplateRepository
	cdks      repository.CDKRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
	now       func() time.Time
}

func NewTemplateUseCase(templates repository.TemplateRepository, cdks repository.CDKRepository, tm repository.TransactionManager, logger *zerolog.Logger, opts ...Option) *templateUC {
	o := buildOptions(opts)
	return &templateUC{templates: templates, cdks: cdks, tm: tm, log: logger, now: o.now}
}

func (u *templateUC) List(ctx context.Context) ([]*model.Template, error) {
	defer logging.TraceDuration(u.log, "TemplateUC.List")()
	return u.templates.ListAll(ctx, repository.NoTX)
}

func (u *templateUC) Get(ctx context.Context, id string) (*model.Template, error) {
	return u.templates.FindByID(ctx, repository.NoTX, id)
}

func (u *templateUC) Create(ctx context.Context, in TemplateInput) (*model.Template, error) {
	defer logging.TraceDuration(u.log, "TemplateUC.Create")()
	if in.Name == nil || in.ValidDays == nil {
		return nil, fmt.Errorf("%w: name and validDays are required", domain.ErrInvalidArgument)
	}
	t, err := model.NewTemplate(*in.Name, in.Description, *in.ValidDays, in.Policy, in.Configuration)
	if err != nil {
		return nil, err
	}
	now := u.now()
	t.CreatedAt, t.UpdatedAt = now, now
	if err := u.templates.Create(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	u.log.Info().Str("template_id", t.ID).Str("name", t.Name).Msg("template created")
	return t, nil
}

func (u *templateUC) Update(ctx context.Context, id string, in TemplateInput) (*model.Template, error) {
	defer logging.TraceDuration(u.log, "TemplateUC.Update")()

	var out *model.Template
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.templates.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, used, err := u.cdks.CountByTemplate(ctx, tx, id); err != nil {
			return err
		} else if used > 0 {
			return fmt.Errorf("%w: %d redeemed codes", domain.ErrTemplateInUse, used)
		}
		if in.Name != nil {
			t.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			t.Description = in.Description
		}
		if in.ValidDays != nil {
			t.ValidDays = *in.ValidDays
		}
		if in.Policy != nil {
			t.Policy = *in.Policy
		}
		if in.Configuration != nil {
			t.Configuration = *in.Configuration
		}
		if err := t.Validate(); err != nil {
			return err
		}
		t.UpdatedAt = u.now()
		if err := u.templates.Update(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("template_id", id).Msg("template updated")
	return out, nil
}

func (u *templateUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "TemplateUC.Delete")()
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.templates.FindByID(ctx, tx, id); err != nil {
			return err
		}
		total, used, err := u.cdks.CountByTemplate(ctx, tx, id)
		if err != nil {
			return err
		}
		if total > 0 {
			return fmt.Errorf("%w: %d codes (%d used)", domain.ErrTemplateInUse, total, used)
		}
		if err := u.templates.Delete(ctx, tx, id); err != nil {
			return err
		}
		u.log.Info().Str("template_id", id).Msg("template deleted")
		return nil
	})
}
