package cron

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/habitchain/backend/internal/domain"
	"github.com/habitchain/backend/internal/domain/challenge"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/xcontext"
)

// EliminationCronJob removes the weakest participant of every challenge owned
// by the operator once its current week is over. The final week is left to
// SettlementCronJob.
type EliminationCronJob struct {
	challengeDomain domain.ChallengeDomain
	participantRepo repository.ParticipantRepository
	interval        time.Duration
	now             func() time.Time
}

func NewEliminationCronJob(
	challengeDomain domain.ChallengeDomain,
	participantRepo repository.ParticipantRepository,
	interval time.Duration,
) *EliminationCronJob {
	return &EliminationCronJob{
		challengeDomain: challengeDomain,
		participantRepo: participantRepo,
		interval:        interval,
		now:             time.Now,
	}
}

func (job *EliminationCronJob) Do(ctx context.Context) {
	ctx, challenges, ok := operatorChallenges(ctx, job.challengeDomain)
	if !ok {
		return
	}

	for _, c := range challenges {
		job.eliminate(ctx, c)
	}
}

func (job *EliminationCronJob) RunNow() bool {
	return true
}

func (job *EliminationCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

func (job *EliminationCronJob) eliminate(ctx context.Context, c model.Challenge) {
	week := c.CurrentWeek
	if week < 1 || week >= challenge.NumWeeks {
		return
	}

	weekDuration := xcontext.Configs(ctx).Challenge.WeekDuration.Duration
	if job.now().Before(weekEnd(c, week, weekDuration)) {
		return
	}

	participants, err := job.participantRepo.GetByChallengeID(ctx, c.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants of challenge %d: %v", c.ID, err)
		return
	}

	for _, p := range participants {
		if p.IsEliminated && p.EliminationWeek == week {
			// Somebody was already removed this week.
			return
		}
	}

	// The loser is the last entry of the weekly ranking.
	ranking, err := job.participantRepo.GetWeeklyRanking(ctx, c.ID, week, 0, 0)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ranking of challenge %d: %v", c.ID, err)
		return
	}

	if len(ranking) < 2 {
		return
	}

	loser := ranking[len(ranking)-1]
	_, err = job.challengeDomain.Eliminate(ctx, &model.WeeklyEliminationRequest{
		ChallengeID: c.ID,
		Week:        week,
		Participant: loser.Address,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot eliminate %s from challenge %d: %v", loser.Address, c.ID, err)
		return
	}

	xcontext.Logger(ctx).Infof("Eliminated %s from challenge %d in week %d", loser.Address, c.ID, week)
}

func weekPool(c model.Challenge, week uint64) uint64 {
	switch week {
	case 1:
		return c.Week1Pool
	case 2:
		return c.Week2Pool
	case 3:
		return c.Week3Pool
	}

	return 0
}

// weekEnd returns the moment the given week of a challenge is over.
func weekEnd(c model.Challenge, week uint64, weekDuration time.Duration) time.Time {
	return time.Unix(int64(c.StartTime), 0).Add(time.Duration(week) * weekDuration)
}

// operatorChallenges returns the active challenges owned by the operator,
// along with a context acting as the operator.
func operatorChallenges(
	ctx context.Context, challengeDomain domain.ChallengeDomain,
) (context.Context, []model.Challenge, bool) {
	operator := xcontext.Configs(ctx).Challenge.OperatorAddress
	if !common.IsHexAddress(operator) {
		xcontext.Logger(ctx).Warnf("No operator address configured")
		return ctx, nil, false
	}

	ctx = xcontext.WithRequestUserID(ctx, common.HexToAddress(operator).Hex())
	resp, err := challengeDomain.GetChallenges(ctx, &model.GetChallengesRequest{
		Creator:    operator,
		ActiveOnly: true,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active challenges: %v", err)
		return ctx, nil, false
	}

	return ctx, resp.Challenges, true
}
