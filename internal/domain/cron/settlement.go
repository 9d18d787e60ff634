package cron

import (
	"context"
	"time"

	"github.com/habitchain/backend/internal/domain"
	"github.com/habitchain/backend/internal/domain/challenge"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/xcontext"
)

// SettlementCronJob pays the remaining week pools to the best participants of
// each week and ends challenges whose last week is over.
type SettlementCronJob struct {
	challengeDomain domain.ChallengeDomain
	participantRepo repository.ParticipantRepository
	interval        time.Duration
	now             func() time.Time
}

func NewSettlementCronJob(
	challengeDomain domain.ChallengeDomain,
	participantRepo repository.ParticipantRepository,
	interval time.Duration,
) *SettlementCronJob {
	return &SettlementCronJob{
		challengeDomain: challengeDomain,
		participantRepo: participantRepo,
		interval:        interval,
		now:             time.Now,
	}
}

func (job *SettlementCronJob) Do(ctx context.Context) {
	ctx, challenges, ok := operatorChallenges(ctx, job.challengeDomain)
	if !ok {
		return
	}

	weekDuration := xcontext.Configs(ctx).Challenge.WeekDuration.Duration
	for _, c := range challenges {
		if job.now().Before(weekEnd(c, challenge.NumWeeks, weekDuration)) {
			continue
		}

		job.settle(ctx, c)
	}
}

func (job *SettlementCronJob) RunNow() bool {
	return false
}

func (job *SettlementCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

func (job *SettlementCronJob) settle(ctx context.Context, c model.Challenge) {
	for week := uint64(1); week <= challenge.NumWeeks; week++ {
		if weekPool(c, week) == 0 {
			continue
		}

		ranking, err := job.participantRepo.GetWeeklyRanking(ctx, c.ID, week, 0, len(challenge.RewardPercents))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get ranking of challenge %d: %v", c.ID, err)
			return
		}

		if len(ranking) == 0 {
			xcontext.Logger(ctx).Warnf("No winner for week %d of challenge %d", week, c.ID)
			continue
		}

		// With less than three participants left, the best one takes the
		// remaining ranks.
		winners := make([]string, len(challenge.RewardPercents))
		for i := range winners {
			winners[i] = ranking[min(i, len(ranking)-1)].Address
		}

		_, err = job.challengeDomain.Distribute(ctx, &model.DistributeWeeklyRewardsRequest{
			ChallengeID: c.ID,
			Week:        week,
			Winner1:     winners[0],
			Winner2:     winners[1],
			Winner3:     winners[2],
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot distribute week %d of challenge %d: %v", week, c.ID, err)
			return
		}
	}

	_, err := job.challengeDomain.End(ctx, &model.EndChallengeRequest{ChallengeID: c.ID})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot end challenge %d: %v", c.ID, err)
		return
	}

	xcontext.Logger(ctx).Infof("Settled challenge %d", c.ID)
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
