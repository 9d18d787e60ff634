package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/habitchain/backend/internal/domain/cron"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadService()
	cfg := xcontext.Configs(s.ctx).Cron

	go s.startPrometheus()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewEliminationCronJob(
		s.challengeDomain, s.participantRepo, cfg.EliminationInterval.Duration))
	cronJobManager.Register(cron.NewSettlementCronJob(
		s.challengeDomain, s.participantRepo, cfg.SettlementInterval.Duration))
	cronJobManager.Register(cron.NewPayoutCronJob(s.payoutDomain, cfg.PayoutInterval.Duration))

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(s.ctx)
	return nil
}
