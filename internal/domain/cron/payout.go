package cron

import (
	"context"
	"time"

	"github.com/habitchain/backend/internal/domain"
	"github.com/habitchain/backend/pkg/xcontext"
)

type PayoutCronJob struct {
	payoutDomain domain.PayoutDomain
	interval     time.Duration
}

func NewPayoutCronJob(payoutDomain domain.PayoutDomain, interval time.Duration) *PayoutCronJob {
	return &PayoutCronJob{payoutDomain: payoutDomain, interval: interval}
}

func (job *PayoutCronJob) Do(ctx context.Context) {
	if n := job.payoutDomain.Dispatch(ctx); n > 0 {
		xcontext.Logger(ctx).Infof("Dispatched %d payouts", n)
	}
}

func (job *PayoutCronJob) RunNow() bool {
	return true
}

func (job *PayoutCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
