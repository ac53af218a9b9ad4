//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/usecase"
)

func TestAccountUseCase_SetActive(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("should disable remotely then locally", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		gw := NewMockGateway()
		acc := seedMember(accounts, gw, "alice", true, 10)
		uc := usecase.NewAccountUseCase(accounts, gw, logger)

		got, err := uc.SetActive(ctx, acc.ID, false)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if got.IsActive || accounts.Snapshot(acc.ID).IsActive || !gw.Disabled("ext-alice") {
			t.Error("expected the account disabled on both sides")
		}
	})

	t.Run("should be a no-op when already in the target state", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		gw := NewMockGateway()
		acc := seedMember(accounts, gw, "alice", true, 10)
		uc := usecase.NewAccountUseCase(accounts, gw, logger)

		if _, err := uc.SetActive(ctx, acc.ID, true); err != nil {
			t.Fatal(err)
		}
		if len(gw.Calls) != 0 {
			t.Errorf("expected no gateway calls, got %v", gw.Calls)
		}
	})

	t.Run("should record a pending remote toggle when the gateway fails", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		gw := NewMockGateway()
		acc := seedMember(accounts, gw, "alice", false, 10)
		gw.SetDisabledFunc = func(ctx context.Context, id string, disabled bool) error { return errors.New("down") }
		uc := usecase.NewAccountUseCase(accounts, gw, logger)

		got, err := uc.SetActive(ctx, acc.ID, true)
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsActive || got.RemoteState != model.RemotePendingEnable {
			t.Errorf("expected active with pending_enable, got %+v", got)
		}
	})

	t.Run("should return ErrNotFound for unknown accounts", func(t *testing.T) {
		uc := usecase.NewAccountUseCase(NewMockAccountRepo(), NewMockGateway(), logger)
		if _, err := uc.SetActive(ctx, "nope", true); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTemplateUseCase(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("should create with default documents", func(t *testing.T) {
		uc := usecase.NewTemplateUseCase(NewMockTemplateRepo(), NewMockCDKRepo(), NewMockTxManager(), logger)
		tpl, err := uc.Create(ctx, usecase.TemplateInput{Name: strPtr("Monthly"), ValidDays: intPtr(30)})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if tpl.Policy.AuthenticationProviderID != model.DefaultAuthProviderID || !tpl.Policy.EnableAllFolders {
			t.Errorf("expected default policy, got %+v", tpl.Policy)
		}
	})

	t.Run("should require a name and valid days", func(t *testing.T) {
		uc := usecase.NewTemplateUseCase(NewMockTemplateRepo(), NewMockCDKRepo(), NewMockTxManager(), logger)
		if _, err := uc.Create(ctx, usecase.TemplateInput{Name: strPtr("x")}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should apply partial updates", func(t *testing.T) {
		templates := NewMockTemplateRepo()
		uc := usecase.NewTemplateUseCase(templates, NewMockCDKRepo(), NewMockTxManager(), logger)
		tpl, _ := uc.Create(ctx, usecase.TemplateInput{Name: strPtr("Monthly"), ValidDays: intPtr(30)})

		got, err := uc.Update(ctx, tpl.ID, usecase.TemplateInput{ValidDays: intPtr(31)})
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Monthly" || got.ValidDays != 31 {
			t.Errorf("unexpected update result: %+v", got)
		}
	})

	t.Run("should refuse to change or delete a template in use", func(t *testing.T) {
		// --- Arrange ---
		templates := NewMockTemplateRepo()
		cdks := NewMockCDKRepo()
		uc := usecase.NewTemplateUseCase(templates, cdks, NewMockTxManager(), logger)
		tpl, _ := uc.Create(ctx, usecase.TemplateInput{Name: strPtr("Monthly"), ValidDays: intPtr(30)})
		cdks.Seed(&model.CDK{ID: "c1", Code: "EMBY-0000-0001", Status: model.CDKStatusUnused, CreatedAt: t0, TemplateID: &tpl.ID})

		// --- Act / Assert ---
		if err := uc.Delete(ctx, tpl.ID); !errors.Is(err, domain.ErrTemplateInUse) {
			t.Fatalf("expected ErrTemplateInUse on delete, got %v", err)
		}
		if _, err := uc.Update(ctx, tpl.ID, usecase.TemplateInput{ValidDays: intPtr(60)}); err != nil {
			t.Fatalf("expected updates while no referencing code is used, got %v", err)
		}
		_, _ = cdks.MarkUsed(ctx, repository.NoTX, "c1", "acc-1", t0)
		if _, err := uc.Update(ctx, tpl.ID, usecase.TemplateInput{ValidDays: intPtr(90)}); !errors.Is(err, domain.ErrTemplateInUse) {
			t.Fatalf("expected ErrTemplateInUse on update, got %v", err)
		}
	})

	t.Run("should delete an unreferenced template", func(t *testing.T) {
		templates := NewMockTemplateRepo()
		uc := usecase.NewTemplateUseCase(templates, NewMockCDKRepo(), NewMockTxManager(), logger)
		tpl, _ := uc.Create(ctx, usecase.TemplateInput{Name: strPtr("Trial"), ValidDays: intPtr(3)})
		if err := uc.Delete(ctx, tpl.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := uc.Get(ctx, tpl.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestMediaUseCase_HandleLibraryEvent(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	newUC := func(items *MockMediaRepo) usecase.MediaUseCase {
		return usecase.NewMediaUseCase(items, &MockServerIdentity{ID: "srv-1"}, "https://media.example.com/", logger, usecase.WithClock(newTestClock(t0).Now))
	}

	t.Run("should record a new episode with poster and web urls", func(t *testing.T) {
		// --- Arrange ---
		items := &MockMediaRepo{}
		uc := newUC(items)
		ev := usecase.LibraryEvent{Event: usecase.EventLibraryNew, Item: &usecase.LibraryItem{
			ID:                      "item-9",
			Name:                    "Pilot",
			Type:                    "Episode",
			SeriesID:                "series-1",
			ParentBackdropImageTags: []string{"pb"},
			BackdropImageTags:       []string{"bd"},
		}}

		// --- Act ---
		item, created, err := uc.HandleLibraryEvent(ctx, ev)

		// --- Assert ---
		if err != nil || !created {
			t.Fatalf("expected a created item, got created=%v err=%v", created, err)
		}
		if item.PosterURL == nil || !strings.HasPrefix(*item.PosterURL, "https://media.example.com/Items/series-1/Images/Backdrop?") {
			t.Errorf("unexpected poster url: %v", item.PosterURL)
		}
		if item.WebURL == nil || !strings.Contains(*item.WebURL, "serverId=srv-1") || !strings.HasSuffix(*item.WebURL, "&context=home") {
			t.Errorf("unexpected web url: %v", item.WebURL)
		}
		if item.BackdropURL == nil || !strings.Contains(*item.BackdropURL, "maxWidth=1920") {
			t.Errorf("unexpected backdrop url: %v", item.BackdropURL)
		}
		if !item.DateCreated.Equal(t0) {
			t.Errorf("expected DateCreated to default to now, got %v", item.DateCreated)
		}
	})

	t.Run("should ignore other events and known items", func(t *testing.T) {
		items := &MockMediaRepo{}
		uc := newUC(items)
		if _, created, err := uc.HandleLibraryEvent(ctx, usecase.LibraryEvent{Event: "playback.start"}); err != nil || created {
			t.Fatalf("expected the event to be ignored, got created=%v err=%v", created, err)
		}
		ev := usecase.LibraryEvent{NotificationType: usecase.EventLibraryNew, Item: &usecase.LibraryItem{ID: "item-1"}}
		if _, created, _ := uc.HandleLibraryEvent(ctx, ev); !created {
			t.Fatal("expected the first delivery to create the item")
		}
		if _, created, err := uc.HandleLibraryEvent(ctx, ev); err != nil || created {
			t.Fatalf("expected a duplicate delivery to be a no-op, got created=%v err=%v", created, err)
		}
	})

	t.Run("should reject an item without id", func(t *testing.T) {
		_, _, err := newUC(&MockMediaRepo{}).HandleLibraryEvent(ctx, usecase.LibraryEvent{Event: usecase.EventLibraryNew, Item: &usecase.LibraryItem{}})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should clamp the latest limit", func(t *testing.T) {
		items := &MockMediaRepo{}
		for i := 0; i < 60; i++ {
			_ = items.Create(ctx, repository.NoTX, &model.MediaItem{ID: string(rune('a' + i)), EmbyID: "e" + string(rune('a'+i)), DateCreated: t0.Add(days(i))})
		}
		uc := newUC(items)
		got, _ := uc.Latest(ctx, 0)
		if len(got) != usecase.DefaultLatestLimit {
			t.Errorf("expected default limit, got %d", len(got))
		}
		got, _ = uc.Latest(ctx, 500)
		if len(got) != usecase.MaxLatestLimit {
			t.Errorf("expected max limit, got %d", len(got))
		}
	})
}

func TestSystemConfigUseCase_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := &MockSystemConfigRepo{}
	uc := usecase.NewSystemConfigUseCase(repo, newTestLogger())

	if _, err := uc.Upsert(ctx, " ", "v", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	_, _ = uc.Upsert(ctx, "site_name", "A", nil)
	_, _ = uc.Upsert(ctx, "site_name", "B", strPtr("shown in header"))
	all, _ := uc.List(ctx)
	if len(all) != 1 || all[0].Value != "B" {
		t.Fatalf("expected a single upserted value, got %+v", all)
	}
}
