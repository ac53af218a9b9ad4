package sched

import (
	"context"

	"emby-cdk-manager/internal/usecase"

	"github.com/rs/zerolog"
)

// ExpiryWorker runs one expiry sweep per invocation.
type ExpiryWorker struct {
	uc  usecase.ReconcileUseCase
	log *zerolog.Logger
}

func NewExpiryWorker(uc usecase.ReconcileUseCase, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{uc: uc, log: &exprLog}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	rep, err := w.uc.SweepExpired(ctx)
	ev := w.log.Info()
	if err != nil {
		ev = w.log.Error().Err(err)
	} else if rep.Scanned == 0 {
		ev = w.log.Debug()
	}
	ev.Int("scanned", rep.Scanned).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Int("remote_failed", rep.RemoteFailed).
		Msg("expiry sweep finished")
	return err
}
