package emby

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"emby-cdk-manager/internal/domain/ports/adapter"
)

var _ adapter.ServerIdentity = (*ServerIdentity)(nil)

// ServerIdentity caches the server id reported by /System/Info/Public.
type ServerIdentity struct {
	gw  *Gateway
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	id        string
	fetchedAt time.Time
}

func NewServerIdentity(gw *Gateway, ttl time.Duration) *ServerIdentity {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ServerIdentity{gw: gw, ttl: ttl, now: time.Now}
}

// Get returns the cached id, refreshing it once stale. A failed refresh falls back to the last known id.
func (s *ServerIdentity) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.id, nil
	}

	var out struct {
		ID         string `json:"Id"`
		ServerName string `json:"ServerName"`
	}
	err := s.gw.call(ctx, "server_info", http.MethodGet, "/System/Info/Public", nil, &out)
	if err == nil && out.ID == "" {
		err = errors.New("server info carries no id")
	}
	if err != nil {
		if s.id != "" {
			s.gw.logger.Warn().Err(err).Msg("server id refresh failed, serving stale value")
			return s.id, nil
		}
		return "", err
	}
	s.id = out.ID
	s.fetchedAt = s.now()
	return s.id, nil
}
