package sched

import (
	"context"

	"emby-cdk-manager/internal/usecase"

	"github.com/rs/zerolog"
)

// ResyncReconciler re-drives remote enable/disable calls that failed earlier.
// It covers accounts whose local state moved while the gateway was unreachable.
type ResyncReconciler struct {
	uc  usecase.ReconcileUseCase
	log *zerolog.Logger
}

func NewResyncReconciler(uc usecase.ReconcileUseCase, logger *zerolog.Logger) *ResyncReconciler {
	l := logger.With().Str("component", "ResyncReconciler").Logger()
	return &ResyncReconciler{uc: uc, log: &l}
}

func (w *ResyncReconciler) Run(ctx context.Context) error {
	rep, err := w.uc.ResyncRemote(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("remote resync failed")
		return err
	}
	if rep.Scanned > 0 {
		w.log.Info().Int("scanned", rep.Scanned).Int("succeeded", rep.Succeeded).Int("failed", rep.Failed).Msg("remote resync finished")
	}
	return nil
}
