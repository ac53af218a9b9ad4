//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
)

// -----------------------------
// Utilities
// -----------------------------

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// testClock is a movable clock for use case options.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock { return &testClock{now: at} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(at time.Time) {
	c.mu.Lock()
	c.now = at
	c.mu.Unlock()
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func timePtr(v time.Time) *time.Time { return &v }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- Mock CDKRepository ----

type MockCDKRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.CDK
	byCode map[string]string

	CreateBatchFunc func(ctx context.Context, tx repository.Tx, cdks []*model.CDK) error
	MarkUsedFunc    func(ctx context.Context, tx repository.Tx, id, accountID string, at time.Time) (bool, error)
}

var _ repository.CDKRepository = (*MockCDKRepo)(nil)

func NewMockCDKRepo() *MockCDKRepo {
	return &MockCDKRepo{byID: map[string]*model.CDK{}, byCode: map[string]string{}}
}

// Seed stores c as-is.
func (m *MockCDKRepo) Seed(c *model.CDK) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byID[c.ID] = &cp
	m.byCode[c.Code] = c.ID
}

func (m *MockCDKRepo) CreateBatch(ctx context.Context, tx repository.Tx, cdks []*model.CDK) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, cdks)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cdks {
		if _, dup := m.byCode[c.Code]; dup {
			return domain.ErrAlreadyExists
		}
	}
	for _, c := range cdks {
		cp := *c
		m.byID[c.ID] = &cp
		m.byCode[c.Code] = c.ID
	}
	return nil
}

func (m *MockCDKRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.CDK, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MockCDKRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.CDK, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCDKRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.CDK, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.CDK, 0, len(m.byID))
	for _, c := range m.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockCDKRepo) MarkUsed(ctx context.Context, tx repository.Tx, id, accountID string, at time.Time) (bool, error) {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, tx, id, accountID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != model.CDKStatusUnused {
		return false, nil
	}
	c.Status = model.CDKStatusUsed
	c.UsedByAccountID = &accountID
	c.UsedAt = &at
	return true, nil
}

func (m *MockCDKRepo) MarkExpired(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != model.CDKStatusUnused {
		return false, nil
	}
	c.Status = model.CDKStatusExpired
	return true, nil
}

func (m *MockCDKRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byCode, c.Code)
	delete(m.byID, id)
	return nil
}

func (m *MockCDKRepo) CountByTemplate(ctx context.Context, tx repository.Tx, templateID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, used := 0, 0
	for _, c := range m.byID {
		if c.TemplateID != nil && *c.TemplateID == templateID {
			total++
			if c.Status == model.CDKStatusUsed {
				used++
			}
		}
	}
	return total, used, nil
}

// ---- Mock AccountRepository ----

type MockAccountRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Account

	CreateFunc         func(ctx context.Context, tx repository.Tx, a *model.Account) error
	FindByUsernameFunc func(ctx context.Context, tx repository.Tx, username string) (*model.Account, error)
	SetActiveFunc      func(ctx context.Context, tx repository.Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error)
}

var _ repository.AccountRepository = (*MockAccountRepo)(nil)

func NewMockAccountRepo() *MockAccountRepo {
	return &MockAccountRepo{byID: map[string]*model.Account{}}
}

func (m *MockAccountRepo) Seed(a *model.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.byID[a.ID] = &cp
}

// Snapshot returns a copy of the stored account or nil.
func (m *MockAccountRepo) Snapshot(id string) *model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (m *MockAccountRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *MockAccountRepo) Create(ctx context.Context, tx repository.Tx, a *model.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if strings.EqualFold(x.Username, a.Username) {
			return domain.ErrAlreadyExists
		}
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *MockAccountRepo) Update(ctx context.Context, tx repository.Tx, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *a
	cp.ExternalID, cp.ExternalSessionToken = cur.ExternalID, cur.ExternalSessionToken
	m.byID[a.ID] = &cp
	return nil
}

func (m *MockAccountRepo) SetExternalSession(ctx context.Context, tx repository.Tx, id, externalID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ExternalID, a.ExternalSessionToken = externalID, token
	return nil
}

func (m *MockAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	if a := m.Snapshot(id); a != nil {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepo) ExternalSession(ctx context.Context, tx repository.Tx, id string) (string, string, error) {
	a := m.Snapshot(id)
	if a == nil {
		return "", "", domain.ErrNotFound
	}
	return a.ExternalID, a.ExternalSessionToken, nil
}

func (m *MockAccountRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, tx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if strings.EqualFold(a.Username, username) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Account, 0, len(m.byID))
	for _, a := range m.byID {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAccountRepo) ListExpiredActive(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Account
	for _, a := range m.byID {
		if a.IsActive && a.ExpiryDate != nil && a.ExpiryDate.Before(now) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAccountRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error) {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, tx, id, active, remote, remoteErr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.IsActive == active {
		return false, nil
	}
	a.IsActive = active
	a.RemoteState, a.RemoteError = remote, remoteErr
	if remote != model.RemoteSynced {
		a.RemoteAttempts++
	} else {
		a.RemoteAttempts = 0
	}
	return true, nil
}

func (m *MockAccountRepo) ListRemotePending(ctx context.Context, tx repository.Tx, limit int) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Account
	for _, a := range m.byID {
		if a.RemoteState != model.RemoteSynced {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAccountRepo) SetRemoteState(ctx context.Context, tx repository.Tx, id string, state model.RemoteState, remoteErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.RemoteState, a.RemoteError = state, remoteErr
	if state == model.RemoteSynced {
		a.RemoteAttempts = 0
	} else {
		a.RemoteAttempts++
	}
	return nil
}

// ---- Mock TemplateRepository ----

type MockTemplateRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Template
}

var _ repository.TemplateRepository = (*MockTemplateRepo)(nil)

func NewMockTemplateRepo() *MockTemplateRepo {
	return &MockTemplateRepo{byID: map[string]*model.Template{}}
}

func (m *MockTemplateRepo) Create(ctx context.Context, tx repository.Tx, t *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) Update(ctx context.Context, tx repository.Tx, t *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTemplateRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Template, 0, len(m.byID))
	for _, t := range m.byID {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockTemplateRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// ---- Mock MediaItemRepository / SystemConfigRepository ----

type MockMediaRepo struct {
	mu    sync.Mutex
	items []*model.MediaItem
}

var _ repository.MediaItemRepository = (*MockMediaRepo)(nil)

func (m *MockMediaRepo) Create(ctx context.Context, tx repository.Tx, it *model.MediaItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.items {
		if x.EmbyID == it.EmbyID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *it
	m.items = append(m.items, &cp)
	return nil
}

func (m *MockMediaRepo) FindByEmbyID(ctx context.Context, tx repository.Tx, embyID string) (*model.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.items {
		if x.EmbyID == embyID {
			cp := *x
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockMediaRepo) Latest(ctx context.Context, tx repository.Tx, limit int) ([]*model.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*model.MediaItem(nil), m.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.After(out[j].DateCreated) })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type MockSystemConfigRepo struct {
	mu    sync.Mutex
	byKey map[string]*model.SystemConfig
}

var _ repository.SystemConfigRepository = (*MockSystemConfigRepo)(nil)

func (m *MockSystemConfigRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.SystemConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.SystemConfig, 0, len(m.byKey))
	for _, c := range m.byKey {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MockSystemConfigRepo) Upsert(ctx context.Context, tx repository.Tx, c *model.SystemConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byKey == nil {
		m.byKey = map[string]*model.SystemConfig{}
	}
	cp := *c
	m.byKey[c.Key] = &cp
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- Mock IdentityGateway ----

type MockGateway struct {
	mu         sync.Mutex
	identities map[string]*mockIdentity
	Calls      []string

	AuthenticateFunc     func(ctx context.Context, username, password string) (*model.Identity, string, error)
	CreateIdentityFunc   func(ctx context.Context, name string) (string, error)
	SetPasswordFunc      func(ctx context.Context, id, pw string) error
	SetPolicyFunc        func(ctx context.Context, id string, p model.Policy) error
	SetConfigurationFunc func(ctx context.Context, id string, c model.Configuration) error
	SetDisabledFunc      func(ctx context.Context, id string, disabled bool) error
}

type mockIdentity struct {
	name     string
	password string
	policy   model.Policy
	config   model.Configuration
}

var _ adapter.IdentityGateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{identities: map[string]*mockIdentity{}}
}

func (g *MockGateway) record(call string) {
	g.mu.Lock()
	g.Calls = append(g.Calls, call)
	g.mu.Unlock()
}

// CallCount counts recorded calls whose name starts with prefix.
func (g *MockGateway) CallCount(prefix string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// AddIdentity registers a remote user that exists only on the gateway.
func (g *MockGateway) AddIdentity(id, name, password string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.identities[id] = &mockIdentity{name: name, password: password, policy: model.DefaultPolicy()}
}

// Disabled reports the remote IsDisabled flag of id.
func (g *MockGateway) Disabled(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ident, ok := g.identities[id]; ok {
		return ident.policy.IsDisabled
	}
	return false
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) Authenticate(ctx context.Context, username, password string) (*model.Identity, string, error) {
	g.record("Authenticate")
	if g.AuthenticateFunc != nil {
		return g.AuthenticateFunc(ctx, username, password)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, ident := range g.identities {
		if !strings.EqualFold(ident.name, username) {
			continue
		}
		if ident.password != password {
			return nil, "", domain.NewExternalAuthError(domain.AuthReasonInvalidCredentials)
		}
		if ident.policy.IsDisabled {
			return nil, "", domain.NewExternalAuthError(domain.AuthReasonDisabled)
		}
		return &model.Identity{ID: id, Name: ident.name, PrimaryImageTag: "tag-" + id, Policy: ident.policy}, "remote-" + id, nil
	}
	return nil, "", domain.NewExternalAuthError(domain.AuthReasonInvalidCredentials)
}

func (g *MockGateway) CreateIdentity(ctx context.Context, name string) (string, error) {
	g.record("CreateIdentity")
	if g.CreateIdentityFunc != nil {
		return g.CreateIdentityFunc(ctx, name)
	}
	id := "ext-" + uuid.NewString()[:8]
	g.mu.Lock()
	g.identities[id] = &mockIdentity{name: name, policy: model.DefaultPolicy(), config: model.DefaultConfiguration()}
	g.mu.Unlock()
	return id, nil
}

func (g *MockGateway) SetPassword(ctx context.Context, id, pw string) error {
	g.record("SetPassword")
	if g.SetPasswordFunc != nil {
		return g.SetPasswordFunc(ctx, id, pw)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	ident, ok := g.identities[id]
	if !ok {
		return &domain.GatewayError{Op: "set password", Status: 404, Err: errors.New("no such user")}
	}
	ident.password = pw
	return nil
}

func (g *MockGateway) SetPolicy(ctx context.Context, id string, p model.Policy) error {
	g.record("SetPolicy")
	if g.SetPolicyFunc != nil {
		return g.SetPolicyFunc(ctx, id, p)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if ident, ok := g.identities[id]; ok {
		ident.policy = p
	}
	return nil
}

func (g *MockGateway) SetConfiguration(ctx context.Context, id string, c model.Configuration) error {
	g.record("SetConfiguration")
	if g.SetConfigurationFunc != nil {
		return g.SetConfigurationFunc(ctx, id, c)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if ident, ok := g.identities[id]; ok {
		ident.config = c
	}
	return nil
}

func (g *MockGateway) SetDisabled(ctx context.Context, id string, disabled bool) error {
	g.record(fmt.Sprintf("SetDisabled:%v", disabled))
	if g.SetDisabledFunc != nil {
		return g.SetDisabledFunc(ctx, id, disabled)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if ident, ok := g.identities[id]; ok {
		ident.policy.IsDisabled = disabled
	}
	return nil
}

func (g *MockGateway) GetIdentity(ctx context.Context, id string) (*model.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ident, ok := g.identities[id]
	if !ok {
		return nil, &domain.GatewayError{Op: "get identity", Status: 404, Err: errors.New("no such user")}
	}
	return &model.Identity{ID: id, Name: ident.name, Policy: ident.policy}, nil
}

// ---- Mock SessionIssuer / PasswordHasher ----

type MockSessions struct{ ttl time.Duration }

var _ adapter.SessionIssuer = (*MockSessions)(nil)

func (s *MockSessions) Issue(acc *model.Account) (string, time.Time, error) {
	return "jwt-" + acc.ID, t0.Add(s.ttl), nil
}

func (s *MockSessions) Parse(token string) (*model.SessionClaims, error) {
	if !strings.HasPrefix(token, "jwt-") {
		return nil, domain.ErrForbidden
	}
	return &model.SessionClaims{AccountID: strings.TrimPrefix(token, "jwt-")}, nil
}

type MockHasher struct{}

var _ adapter.PasswordHasher = MockHasher{}

func (MockHasher) Hash(pw string) (string, error) { return "hash:" + pw, nil }
func (MockHasher) Compare(hash, pw string) bool { return hash == "hash:"+pw }

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrLockNotAcquired
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// ---- Rate limiter / notifier / runner / server identity ----

type MockLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	Err    error
}

var _ adapter.RateLimiter = (*MockLimiter)(nil)

func (l *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.Err != nil {
		return false, l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = map[string]int{}
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

type MockNotifier struct {
	mu   sync.Mutex
	Sent []string
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func (n *MockNotifier) Notify(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, text)
	return nil
}

func (n *MockNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Sent...)
}

// SyncRunner runs submitted tasks inline so tests can assert their effects.
type SyncRunner struct {
	mu   sync.Mutex
	Runs int
}

var _ adapter.TaskRunner = (*SyncRunner)(nil)

func (r *SyncRunner) Submit(task func(ctx context.Context) error) error {
	r.mu.Lock()
	r.Runs++
	r.mu.Unlock()
	_ = task(context.Background())
	return nil
}

type MockServerIdentity struct {
	ID  string
	Err error
}

var _ adapter.ServerIdentity = (*MockServerIdentity)(nil)

func (s *MockServerIdentity) Get(ctx context.Context) (string, error) { return s.ID, s.Err }

// ---- Mock MediaBrowser ----

type MockBrowser struct {
	UserShelfFunc          func(ctx context.Context, userID, token string, shelf model.Shelf) ([]model.LibraryItem, error)
	UserViewsFunc          func(ctx context.Context, userID, token string) ([]model.LibraryItem, error)
	LibrariesFunc          func(ctx context.Context) ([]model.Library, error)
	BackdropCandidatesFunc func(ctx context.Context, parentID string, limit int) ([]model.LibraryItem, error)
	BackdropFunc           func(ctx context.Context, itemID string) (*model.Image, error)
}

var _ adapter.MediaBrowser = (*MockBrowser)(nil)

func (b *MockBrowser) UserShelf(ctx context.Context, userID, token string, shelf model.Shelf) ([]model.LibraryItem, error) {
	return b.UserShelfFunc(ctx, userID, token, shelf)
}
func (b *MockBrowser) UserViews(ctx context.Context, userID, token string) ([]model.LibraryItem, error) {
	return b.UserViewsFunc(ctx, userID, token)
}
func (b *MockBrowser) Libraries(ctx context.Context) ([]model.Library, error) {
	return b.LibrariesFunc(ctx)
}
func (b *MockBrowser) BackdropCandidates(ctx context.Context, parentID string, limit int) ([]model.LibraryItem, error) {
	return b.BackdropCandidatesFunc(ctx, parentID, limit)
}
func (b *MockBrowser) Backdrop(ctx context.Context, itemID string) (*model.Image, error) {
	return b.BackdropFunc(ctx, itemID)
}
