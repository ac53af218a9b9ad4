package sched

import (
	"emby-cdk-manager/internal/config"
	"emby-cdk-manager/internal/infra/scheduler"
)

const (
	JobExpirySweep  = "expiry-sweep"
	JobRemoteResync = "remote-resync"
)

// Register wires both jobs and their triggers into s.
func Register(s *scheduler.Scheduler, cfg config.SchedulerConfig, sweep *ExpiryWorker, resync *ResyncReconciler) error {
	if err := s.Register(JobExpirySweep, sweep.Run); err != nil {
		return err
	}
	for _, spec := range cfg.ExpirySchedules {
		if err := s.AddCron(JobExpirySweep, spec); err != nil {
			return err
		}
	}
	if cfg.RunOnStart == nil || *cfg.RunOnStart {
		if err := s.RunAfterStart(JobExpirySweep, cfg.StartupDelay); err != nil {
			return err
		}
	}

	if err := s.Register(JobRemoteResync, resync.Run); err != nil {
		return err
	}
	return s.AddInterval(JobRemoteResync, cfg.ResyncInterval)
}
