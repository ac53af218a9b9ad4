package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"emby-cdk-manager/internal/config"
	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/db/migrations"
	pg "emby-cdk-manager/internal/infra/db/postgres"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/infra/security"
	"emby-cdk-manager/internal/usecase"
)

const defaultTemplateName = "default"

func main() {
	// ---- Flags / config ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	cdkCount := flag.Int("cdks", 0, "also generate this many codes with the default template")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, false)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Connect Postgres and bring the schema up to date
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.Up(ctx, pool, logger); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	encKey := cfg.Security.EncryptionKey
	if encKey == "" {
		encKey = security.DeriveKey(cfg.Auth.JWTSecret)
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		log.Fatalf("encryption: %v", err)
	}

	tm := pg.NewTxManager(pool)
	accounts := pg.NewAccountRepo(pool, encSvc)
	templates := pg.NewTemplateRepo(pool)
	cdks := pg.NewCDKRepo(pool)

	// ---- Admin account ----
	// The row is a placeholder; the first gateway login fills in the remote id.
	if cfg.Auth.AdminUsername != "" {
		if err := seedAdmin(ctx, accounts, cfg.Auth.AdminUsername); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	// ---- Default template ----
	templateUC := usecase.NewTemplateUseCase(templates, cdks, tm, logger)
	tpl, err := seedTemplate(ctx, templateUC, cfg.CDK.DefaultMemberValidDays)
	if err != nil {
		log.Fatalf("seed template: %v", err)
	}

	// ---- Optional code batch ----
	if *cdkCount > 0 {
		cdkUC := usecase.NewCDKUseCase(cdks, templates, tm, usecase.CDKSettings{
			Prefix:                 cfg.CDK.Prefix,
			MaxBatch:               cfg.CDK.MaxBatch,
			DefaultCDKValidDays:    cfg.CDK.DefaultCDKValidDays,
			DefaultMemberValidDays: cfg.CDK.DefaultMemberValidDays,
		}, logger)
		batch, err := cdkUC.Generate(ctx, usecase.GenerateRequest{Count: *cdkCount, TemplateID: tpl.ID})
		if err != nil {
			log.Fatalf("generate codes: %v", err)
		}
		for _, c := range batch {
			fmt.Printf("  %s (valid %d days, grants %d days)\n", c.Code, c.CDKValidDays, c.MemberValidDays)
		}
	}

	fmt.Println("Seeding complete.")
}

func seedAdmin(ctx context.Context, accounts repository.AccountRepository, username string) error {
	existing, err := accounts.FindByUsername(ctx, repository.NoTX, username)
	switch {
	case err == nil && existing.IsAdmin():
		fmt.Printf("admin %q already present\n", existing.Username)
		return nil
	case err == nil:
		return fmt.Errorf("account %q exists with role %s; promote it manually", existing.Username, existing.Role)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	acc, err := model.NewAccount(username, "", "", model.RoleAdmin)
	if err != nil {
		return err
	}
	if err := accounts.Create(ctx, repository.NoTX, acc); err != nil {
		return err
	}
	fmt.Printf("seeded admin %q (id=%s)\n", acc.Username, acc.ID)
	return nil
}

func seedTemplate(ctx context.Context, uc usecase.TemplateUseCase, validDays int) (*model.Template, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Name == defaultTemplateName {
			fmt.Printf("template %q already present (id=%s)\n", t.Name, t.ID)
			return t, nil
		}
	}
	name := defaultTemplateName
	desc := "Standard member access"
	t, err := uc.Create(ctx, usecase.TemplateInput{Name: &name, Description: &desc, ValidDays: &validDays})
	if err != nil {
		return nil, err
	}
	fmt.Printf("seeded template %q (id=%s, days=%d)\n", t.Name, t.ID, t.ValidDays)
	return t, nil
}
