//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/security"

	"github.com/jackc/pgx/v4"
)

func newTestAccountRepo(t *testing.T) *accountRepo {
	t.Helper()
	box, err := security.NewEncryptionService("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	return NewAccountRepo(testPool, box)
}

func mustAccount(t *testing.T, repo *accountRepo, name string) *model.Account {
	t.Helper()
	acc, err := model.NewAccount(name, "hash", "ext-"+name, model.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	acc.ExternalSessionToken = "remote-" + name
	if err := repo.Create(context.Background(), nil, acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acc
}

func mustCDK(t *testing.T, repo *cdkRepo, id, code string, createdAt time.Time) *model.CDK {
	t.Helper()
	c := &model.CDK{ID: id, Code: code, Status: model.CDKStatusUnused, BatchID: "batch-1", CreatedAt: createdAt, CDKValidDays: 30, MemberValidDays: 30}
	if err := repo.CreateBatch(context.Background(), nil, []*model.CDK{c}); err != nil {
		t.Fatalf("create cdk: %v", err)
	}
	return c
}

func TestCDKRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	cdks := NewCDKRepo(testPool)
	accounts := newTestAccountRepo(t)
	tm := NewTxManager(testPool)

	t.Run("should reject a duplicate code as ErrAlreadyExists", func(t *testing.T) {
		cleanup(t)
		mustCDK(t, cdks, "c1", "EMBY-AAAA-0001", time.Now())
		err := cdks.CreateBatch(ctx, nil, []*model.CDK{{ID: "c2", Code: "EMBY-AAAA-0001", Status: model.CDKStatusUnused, BatchID: "b", CreatedAt: time.Now(), CDKValidDays: 1}})
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("MarkUsed should succeed exactly once under concurrency", func(t *testing.T) {
		// --- Arrange ---
		cleanup(t)
		c := mustCDK(t, cdks, "c1", "EMBY-AAAA-0002", time.Now())
		acc := mustAccount(t, accounts, "winner")

		// --- Act ---
		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := cdks.MarkUsed(ctx, nil, c.ID, acc.ID, time.Now())
				if err == nil && ok {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()

		// --- Assert ---
		if wins != 1 {
			t.Fatalf("expected exactly one successful CAS, got %d", wins)
		}
		stored, _ := cdks.FindByID(ctx, nil, c.ID)
		if stored.Status != model.CDKStatusUsed || stored.UsedByAccountID == nil || *stored.UsedByAccountID != acc.ID || stored.UsedAt == nil {
			t.Errorf("unexpected stored cdk: %+v", stored)
		}
	})

	t.Run("a lost CAS should roll back the account insert of the same transaction", func(t *testing.T) {
		cleanup(t)
		c := mustCDK(t, cdks, "c1", "EMBY-AAAA-0003", time.Now())
		first := mustAccount(t, accounts, "first")
		if ok, _ := cdks.MarkUsed(ctx, nil, c.ID, first.ID, time.Now()); !ok {
			t.Fatal("expected the first CAS to win")
		}

		late, _ := model.NewAccount("late", "hash", "ext-late", model.RoleUser)
		errRaced := errors.New("raced")
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if err := accounts.Create(ctx, tx, late); err != nil {
				return err
			}
			ok, err := cdks.MarkUsed(ctx, tx, c.ID, late.ID, time.Now())
			if err != nil {
				return err
			}
			if !ok {
				return errRaced
			}
			return nil
		})
		if !errors.Is(err, errRaced) {
			t.Fatalf("expected the raced error, got %v", err)
		}
		if _, err := accounts.FindByUsername(ctx, nil, "late"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected no committed account, got %v", err)
		}
	})

	t.Run("MarkExpired should only move unused codes", func(t *testing.T) {
		cleanup(t)
		c := mustCDK(t, cdks, "c1", "EMBY-AAAA-0004", time.Now().AddDate(0, 0, -40))
		if ok, err := cdks.MarkExpired(ctx, nil, c.ID); err != nil || !ok {
			t.Fatalf("expected expire, got %v %v", ok, err)
		}
		if ok, _ := cdks.MarkExpired(ctx, nil, c.ID); ok {
			t.Error("expected the second expire to be a no-op")
		}
		if ok, _ := cdks.MarkUsed(ctx, nil, c.ID, "nobody", time.Now()); ok {
			t.Error("expected an expired code to never become used")
		}
	})

	t.Run("List should join username and template name newest first", func(t *testing.T) {
		// --- Arrange ---
		cleanup(t)
		templates := NewTemplateRepo(testPool)
		tpl, _ := model.NewTemplate("Monthly", nil, 30, nil, nil)
		if err := templates.Create(ctx, nil, tpl); err != nil {
			t.Fatal(err)
		}
		old := mustCDK(t, cdks, "c1", "EMBY-AAAA-0005", time.Now().Add(-time.Hour))
		newer := &model.CDK{ID: "c2", Code: "EMBY-AAAA-0006", Status: model.CDKStatusUnused, BatchID: "b", CreatedAt: time.Now(), CDKValidDays: 30, MemberValidDays: 30, TemplateID: &tpl.ID}
		_ = cdks.CreateBatch(ctx, nil, []*model.CDK{newer})
		acc := mustAccount(t, accounts, "bob")
		_, _ = cdks.MarkUsed(ctx, nil, old.ID, acc.ID, time.Now())

		// --- Act ---
		list, err := cdks.List(ctx, nil, 0, 0)

		// --- Assert ---
		if err != nil || len(list) != 2 {
			t.Fatalf("expected 2 codes, got %d (%v)", len(list), err)
		}
		if list[0].ID != "c2" || list[0].TemplateName == nil || *list[0].TemplateName != "Monthly" {
			t.Errorf("unexpected first row: %+v", list[0])
		}
		if list[1].UsedByUsername == nil || *list[1].UsedByUsername != "bob" {
			t.Errorf("unexpected second row: %+v", list[1])
		}
		total, used, _ := cdks.CountByTemplate(ctx, nil, tpl.ID)
		if total != 1 || used != 0 {
			t.Errorf("expected 1/0 template references, got %d/%d", total, used)
		}
	})
}

func TestAccountRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	accounts := newTestAccountRepo(t)

	t.Run("should store the remote token sealed and read it back in plaintext", func(t *testing.T) {
		cleanup(t)
		acc := mustAccount(t, accounts, "alice")

		var sealed string
		if err := testPool.QueryRow(ctx, `SELECT external_token_enc FROM accounts WHERE id=$1`, acc.ID).Scan(&sealed); err != nil {
			t.Fatal(err)
		}
		if sealed == "" || sealed == "remote-alice" {
			t.Errorf("expected an encrypted token at rest, got %q", sealed)
		}
		got, _ := accounts.FindByID(ctx, nil, acc.ID)
		if got.ExternalSessionToken != "remote-alice" {
			t.Errorf("expected plaintext on read, got %q", got.ExternalSessionToken)
		}
	})

	t.Run("should reject a duplicate username", func(t *testing.T) {
		cleanup(t)
		mustAccount(t, accounts, "alice")
		dup, _ := model.NewAccount("alice", "", "", model.RoleUser)
		if err := accounts.Create(ctx, nil, dup); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("should treat usernames differing only in case as the same account", func(t *testing.T) {
		cleanup(t)
		acc := mustAccount(t, accounts, "Alice")
		dup, _ := model.NewAccount("alice", "", "", model.RoleUser)
		if err := accounts.Create(ctx, nil, dup); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		got, err := accounts.FindByUsername(ctx, nil, "ALICE")
		if err != nil || got.ID != acc.ID {
			t.Fatalf("expected the Alice row, got %v (%v)", got, err)
		}
	})

	t.Run("should return the plaintext remote session from ExternalSession", func(t *testing.T) {
		cleanup(t)
		acc := mustAccount(t, accounts, "alice")
		ext, token, err := accounts.ExternalSession(ctx, nil, acc.ID)
		if err != nil || ext != acc.ExternalID || token != "remote-alice" {
			t.Fatalf("unexpected session %q %q (%v)", ext, token, err)
		}
		if _, _, err := accounts.ExternalSession(ctx, nil, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpiredActive and SetActive should drive the sweep idempotently", func(t *testing.T) {
		// --- Arrange ---
		cleanup(t)
		now := time.Now()
		lapsed := mustAccount(t, accounts, "lapsed")
		lapsed.ExpiryDate = timePtr(now.Add(-time.Hour))
		_ = accounts.Update(ctx, nil, lapsed)
		current := mustAccount(t, accounts, "current")
		current.ExpiryDate = timePtr(now.Add(time.Hour))
		_ = accounts.Update(ctx, nil, current)
		mustAccount(t, accounts, "unlimited")

		// --- Act ---
		due, err := accounts.ListExpiredActive(ctx, nil, now, 100)

		// --- Assert ---
		if err != nil || len(due) != 1 || due[0].ID != lapsed.ID {
			t.Fatalf("expected only the lapsed account, got %v (%v)", due, err)
		}
		changed, _ := accounts.SetActive(ctx, nil, lapsed.ID, false, model.RemotePendingDisable, "timeout")
		again, _ := accounts.SetActive(ctx, nil, lapsed.ID, false, model.RemotePendingDisable, "timeout")
		if !changed || again {
			t.Errorf("expected the first flip only, got %v then %v", changed, again)
		}
		pending, _ := accounts.ListRemotePending(ctx, nil, 10)
		if len(pending) != 1 || pending[0].RemoteState != model.RemotePendingDisable {
			t.Fatalf("expected one pending account, got %v", pending)
		}
		_ = accounts.SetRemoteState(ctx, nil, lapsed.ID, model.RemotePendingDisable, "still down")
		got, _ := accounts.FindByID(ctx, nil, lapsed.ID)
		if got.RemoteAttempts != 1 || got.RemoteError != "still down" {
			t.Errorf("expected one recorded attempt, got %+v", got)
		}
		_ = accounts.SetRemoteState(ctx, nil, lapsed.ID, model.RemoteSynced, "")
		if pending, _ := accounts.ListRemotePending(ctx, nil, 10); len(pending) != 0 {
			t.Errorf("expected nothing pending after sync, got %d", len(pending))
		}
	})

	t.Run("Update should never touch the stored remote session", func(t *testing.T) {
		cleanup(t)
		acc := mustAccount(t, accounts, "alice")
		acc.ExternalSessionToken = ""
		acc.IsActive = false
		if err := accounts.Update(ctx, nil, acc); err != nil {
			t.Fatal(err)
		}
		got, _ := accounts.FindByID(ctx, nil, acc.ID)
		if got.ExternalSessionToken != "remote-alice" || got.IsActive {
			t.Errorf("unexpected row after update: %+v", got)
		}
		if err := accounts.SetExternalSession(ctx, nil, acc.ID, "ext-2", "fresh"); err != nil {
			t.Fatal(err)
		}
		got, _ = accounts.FindByID(ctx, nil, acc.ID)
		if got.ExternalID != "ext-2" || got.ExternalSessionToken != "fresh" {
			t.Errorf("expected a refreshed session, got %+v", got)
		}
	})
}

func TestTemplateAndMediaRepos_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()

	t.Run("templates should round trip their json documents", func(t *testing.T) {
		cleanup(t)
		repo := NewTemplateRepo(testPool)
		p := model.DefaultPolicy()
		p.SimultaneousStreamLimit = 2
		tpl, _ := model.NewTemplate("Family", nil, 90, &p, nil)
		if err := repo.Create(ctx, nil, tpl); err != nil {
			t.Fatal(err)
		}
		got, err := repo.FindByID(ctx, nil, tpl.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Policy.SimultaneousStreamLimit != 2 || got.Configuration.SubtitleMode != "Default" {
			t.Errorf("unexpected documents: %+v", got)
		}
		if err := repo.Delete(ctx, nil, tpl.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.FindByID(ctx, nil, tpl.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("media items should dedupe by emby id and list newest first", func(t *testing.T) {
		cleanup(t)
		repo := NewMediaItemRepo(testPool)
		base := time.Now().Add(-time.Hour)
		_ = repo.Create(ctx, nil, &model.MediaItem{ID: "m1", EmbyID: "e1", Name: "Old", DateCreated: base})
		_ = repo.Create(ctx, nil, &model.MediaItem{ID: "m2", EmbyID: "e2", Name: "New", DateCreated: base.Add(time.Minute)})
		if err := repo.Create(ctx, nil, &model.MediaItem{ID: "m3", EmbyID: "e1", DateCreated: base}); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		latest, _ := repo.Latest(ctx, nil, 10)
		if len(latest) != 2 || latest[0].Name != "New" {
			t.Errorf("unexpected latest feed: %+v", latest)
		}
	})

	t.Run("system config upsert should keep the description when omitted", func(t *testing.T) {
		cleanup(t)
		repo := NewSystemConfigRepo(testPool)
		desc := "shown in header"
		_ = repo.Upsert(ctx, nil, &model.SystemConfig{Key: "site_name", Value: "A", Description: &desc, UpdatedAt: time.Now()})
		_ = repo.Upsert(ctx, nil, &model.SystemConfig{Key: "site_name", Value: "B", UpdatedAt: time.Now()})
		all, _ := repo.ListAll(ctx, nil)
		if len(all) != 1 || all[0].Value != "B" || all[0].Description == nil || *all[0].Description != desc {
			t.Errorf("unexpected configs: %+v", all)
		}
	})
}

func timePtr(t time.Time) *time.Time { return &t }
