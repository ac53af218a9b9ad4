package postgres

import (
	"context"
	"sync"
)

type commitHooksKey struct{}

// commitHooks collects work that must only happen once the surrounding tx committed.
type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func withCommitHooks(ctx context.Context) (context.Context, *commitHooks) {
	h := &commitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, h), h
}

// afterCommit runs fn once the TxManager transaction carried by ctx commits, and not at
// all if it rolls back. Without one it runs fn right away.
func afterCommit(ctx context.Context, fn func(context.Context)) {
	h, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *commitHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}
