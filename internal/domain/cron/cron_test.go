package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/habitchain/backend/internal/domain"
	"github.com/habitchain/backend/internal/domain/statistic"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/mocks"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/testutil"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cronSuite struct {
	ctx             context.Context
	challengeDomain domain.ChallengeDomain
	participantRepo repository.ParticipantRepository
	payoutRepo      repository.PayoutRepository
	depositRepo     repository.DepositRepository
	deposits        int
}

func newCronSuite(t *testing.T) *cronSuite {
	ctx := testutil.NewMockContext()
	redisClient, _ := testutil.NewRedisClient(t, ctx)
	participantRepo := repository.NewParticipantRepository()
	payoutRepo := repository.NewPayoutRepository()
	depositRepo := repository.NewDepositRepository()

	return &cronSuite{
		ctx:             ctx,
		participantRepo: participantRepo,
		payoutRepo:      payoutRepo,
		depositRepo:     depositRepo,
		challengeDomain: domain.NewChallengeDomain(
			repository.NewChallengeRepository(),
			participantRepo,
			repository.NewLedgerTransactionRepository(),
			payoutRepo,
			repository.NewAccountRepository(),
			depositRepo,
			statistic.New(participantRepo, redisClient),
			redisClient,
			testutil.NewRecordPublisher(),
		),
	}
}

func (s *cronSuite) as(addr common.Address) context.Context {
	return xcontext.WithRequestUserID(s.ctx, addr.Hex())
}

// start deploys a challenge owned by creator which started the given time ago.
func (s *cronSuite) start(t *testing.T, creator common.Address, ago time.Duration, players ...common.Address) int64 {
	deployed, err := s.challengeDomain.Deploy(s.ctx, &model.DeployChallengeRequest{Creator: creator.Hex()})
	require.NoError(t, err)

	_, err = s.challengeDomain.Create(s.as(creator), &model.CreateChallengeRequest{
		ChallengeID:     deployed.ID,
		EntryFee:        1000,
		StartTime:       uint64(time.Now().Add(-ago).Unix()),
		MaxParticipants: 10,
		Name:            "Morning run",
	})
	require.NoError(t, err)

	for _, p := range players {
		_, err := s.challengeDomain.Join(s.as(p), &model.JoinChallengeRequest{
			ChallengeID: deployed.ID,
			Deposit:     s.deposit(t, deployed.ID, p, 1000),
		})
		require.NoError(t, err)
	}

	return deployed.ID
}

// deposit records a confirmed custody deposit and returns its tx hash.
func (s *cronSuite) deposit(t *testing.T, id int64, addr common.Address, amount uint64) string {
	s.deposits++
	hash := fmt.Sprintf("0x%064x", s.deposits)
	require.NoError(t, s.depositRepo.Create(s.ctx, &entity.Deposit{
		TxHash:      hash,
		ChallengeID: id,
		FromAddress: addr.Hex(),
		Amount:      amount,
		Status:      entity.DepositStatusConfirmed,
	}))

	return hash
}

func (s *cronSuite) complete(t *testing.T, id int64, addr common.Address, week, points uint64) {
	_, err := s.challengeDomain.CompleteTask(s.as(addr), &model.CompleteTaskRequest{
		ChallengeID: id, TaskID: 1, PointsEarned: points, Week: week,
	})
	require.NoError(t, err)
}

func (s *cronSuite) info(t *testing.T, id int64) model.Challenge {
	resp, err := s.challengeDomain.GetChallengeInfo(s.ctx, &model.GetChallengeInfoRequest{ChallengeID: id})
	require.NoError(t, err)
	return resp.Challenge
}

func (s *cronSuite) participant(t *testing.T, id int64, addr common.Address) model.Participant {
	resp, err := s.challengeDomain.GetParticipantState(s.ctx, &model.GetParticipantStateRequest{
		ChallengeID: id, Address: addr.Hex(),
	})
	require.NoError(t, err)
	return resp.Participant
}

func TestEliminationCronJob(t *testing.T) {
	s := newCronSuite(t)
	id := s.start(t, testutil.Operator, 90*time.Minute, testutil.Alice, testutil.Bob, testutil.Carol)
	s.complete(t, id, testutil.Alice, 1, 10)
	s.complete(t, id, testutil.Bob, 1, 3)
	s.complete(t, id, testutil.Carol, 1, 5)

	job := NewEliminationCronJob(s.challengeDomain, s.participantRepo, time.Hour)
	job.Do(s.ctx)

	bob := s.participant(t, id, testutil.Bob)
	require.True(t, bob.IsEliminated)
	require.Equal(t, uint64(1), bob.EliminationWeek)

	info := s.info(t, id)
	require.Equal(t, uint64(2), info.CurrentWeek)
	require.Equal(t, uint64(300), info.Week2Pool)

	// Week 2 is not over yet.
	job.Do(s.ctx)
	require.False(t, s.participant(t, id, testutil.Carol).IsEliminated)

	s.complete(t, id, testutil.Alice, 2, 5)
	job.now = func() time.Time { return time.Now().Add(time.Hour) }
	job.Do(s.ctx)

	carol := s.participant(t, id, testutil.Carol)
	require.True(t, carol.IsEliminated)
	require.Equal(t, uint64(2), carol.EliminationWeek)
	require.Equal(t, uint64(3), s.info(t, id).CurrentWeek)

	// The final week is never eliminated, the last participant is left.
	job.now = func() time.Time { return time.Now().Add(5 * time.Hour) }
	job.Do(s.ctx)
	require.False(t, s.participant(t, id, testutil.Alice).IsEliminated)
}

func TestEliminationCronJob_Skipped(t *testing.T) {
	s := newCronSuite(t)

	// Owned by somebody else.
	foreign := s.start(t, testutil.Dave, 90*time.Minute, testutil.Alice, testutil.Bob)

	// Only one participant left to rank.
	alone := s.start(t, testutil.Operator, 90*time.Minute, testutil.Alice)

	// Already eliminated this week by hand.
	manual := s.start(t, testutil.Operator, 90*time.Minute, testutil.Alice, testutil.Bob, testutil.Carol)
	_, err := s.challengeDomain.Eliminate(s.as(testutil.Operator), &model.WeeklyEliminationRequest{
		ChallengeID: manual, Week: 1, Participant: testutil.Carol.Hex(),
	})
	require.NoError(t, err)

	job := NewEliminationCronJob(s.challengeDomain, s.participantRepo, time.Hour)
	job.Do(s.ctx)

	require.Equal(t, uint64(1), s.info(t, foreign).CurrentWeek)
	require.False(t, s.participant(t, foreign, testutil.Alice).IsEliminated)
	require.False(t, s.participant(t, foreign, testutil.Bob).IsEliminated)

	require.False(t, s.participant(t, alone, testutil.Alice).IsEliminated)

	// The manual elimination moved the challenge to week 2, which is not over.
	require.Equal(t, uint64(2), s.info(t, manual).CurrentWeek)
	require.False(t, s.participant(t, manual, testutil.Alice).IsEliminated)
	require.False(t, s.participant(t, manual, testutil.Bob).IsEliminated)
}

func TestEliminationCronJob_Tie(t *testing.T) {
	s := newCronSuite(t)
	id := s.start(t, testutil.Operator, 90*time.Minute, testutil.Alice, testutil.Bob, testutil.Carol)
	s.complete(t, id, testutil.Alice, 1, 10)
	s.complete(t, id, testutil.Bob, 1, 3)
	s.complete(t, id, testutil.Carol, 1, 3)

	setLastTaskTime := func(addr common.Address, ts uint64) {
		require.NoError(t, xcontext.DB(s.ctx).Model(&entity.Participant{}).
			Where("challenge_id=? AND address=?", id, addr.Hex()).
			Update("last_task_time", ts).Error)
	}
	setLastTaskTime(testutil.Bob, 100)
	setLastTaskTime(testutil.Carol, 200)

	// The earlier task ranks higher on equal points.
	ranking, err := s.participantRepo.GetWeeklyRanking(s.ctx, id, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	require.Equal(t, testutil.Bob.Hex(), ranking[1].Address)
	require.Equal(t, testutil.Carol.Hex(), ranking[2].Address)

	NewEliminationCronJob(s.challengeDomain, s.participantRepo, time.Hour).Do(s.ctx)

	require.True(t, s.participant(t, id, testutil.Carol).IsEliminated)
	require.False(t, s.participant(t, id, testutil.Bob).IsEliminated)
}

func TestSettlementCronJob(t *testing.T) {
	s := newCronSuite(t)
	id := s.start(t, testutil.Operator, 4*time.Hour, testutil.Alice, testutil.Bob, testutil.Carol)
	s.complete(t, id, testutil.Alice, 1, 10)
	s.complete(t, id, testutil.Bob, 1, 5)
	s.complete(t, id, testutil.Carol, 1, 1)

	// Still running.
	running := s.start(t, testutil.Operator, time.Hour, testutil.Alice)

	job := NewSettlementCronJob(s.challengeDomain, s.participantRepo, time.Hour)
	job.Do(s.ctx)

	info := s.info(t, id)
	require.False(t, info.IsActive)
	require.Equal(t, uint64(0), info.Week1Pool)

	payouts, err := s.payoutRepo.GetByChallengeID(s.ctx, id)
	require.NoError(t, err)
	require.Len(t, payouts, 3)

	got := map[string]uint64{}
	for _, p := range payouts {
		require.Equal(t, entity.PayoutKindReward, p.Kind)
		require.Equal(t, entity.PayoutStatusPending, p.Status)
		got[p.ToAddress] = p.Amount
	}

	require.Equal(t, map[string]uint64{
		testutil.Alice.Hex(): 840,
		testutil.Bob.Hex():   630,
		testutil.Carol.Hex(): 630,
	}, got)

	require.True(t, s.info(t, running).IsActive)
}

func TestSettlementCronJob_SingleWinner(t *testing.T) {
	s := newCronSuite(t)
	id := s.start(t, testutil.Operator, 4*time.Hour, testutil.Alice)

	job := NewSettlementCronJob(s.challengeDomain, s.participantRepo, time.Hour)
	job.Do(s.ctx)

	require.False(t, s.info(t, id).IsActive)

	payouts, err := s.payoutRepo.GetByChallengeID(s.ctx, id)
	require.NoError(t, err)
	require.Len(t, payouts, 3)

	total := uint64(0)
	for _, p := range payouts {
		require.Equal(t, testutil.Alice.Hex(), p.ToAddress)
		total += p.Amount
	}
	require.Equal(t, uint64(700), total)
}

func TestSettlementCronJob_DistributeFailed(t *testing.T) {
	ctx := testutil.NewMockContext()
	participantRepo := repository.NewParticipantRepository()
	require.NoError(t, repository.NewChallengeRepository().Create(ctx, &entity.Challenge{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 7},
	}))
	require.NoError(t, participantRepo.Upsert(ctx, &entity.Participant{
		Base:        entity.Base{ID: "alice"},
		ChallengeID: 7,
		Address:     testutil.Alice.Hex(),
		Week1Points: 4,
	}))

	challengeDomain := &mocks.ChallengeDomain{}
	challengeDomain.On("GetChallenges", mock.Anything, mock.Anything).Return(&model.GetChallengesResponse{
		Challenges: []model.Challenge{{
			ID:        7,
			IsActive:  true,
			StartTime: uint64(time.Now().Add(-4 * time.Hour).Unix()),
			Week1Pool: 100,
		}},
	}, nil)
	challengeDomain.On("Distribute", mock.Anything, mock.MatchedBy(func(req *model.DistributeWeeklyRewardsRequest) bool {
		alice := testutil.Alice.Hex()
		return req.ChallengeID == 7 && req.Week == 1 &&
			req.Winner1 == alice && req.Winner2 == alice && req.Winner3 == alice
	})).Return(nil, errorx.New(errorx.WinnerNotEligible, "Winner is not eligible"))

	NewSettlementCronJob(challengeDomain, participantRepo, time.Hour).Do(ctx)

	challengeDomain.AssertExpectations(t)
	challengeDomain.AssertNotCalled(t, "End", mock.Anything, mock.Anything)
}

func TestPayoutCronJob(t *testing.T) {
	s := newCronSuite(t)
	id := s.start(t, testutil.Operator, 4*time.Hour, testutil.Alice, testutil.Bob, testutil.Carol)
	NewSettlementCronJob(s.challengeDomain, s.participantRepo, time.Hour).Do(s.ctx)

	publisher := testutil.NewRecordPublisher()
	job := NewPayoutCronJob(domain.NewPayoutDomain(s.payoutRepo, publisher), time.Minute)
	require.True(t, job.RunNow())
	job.Do(s.ctx)

	require.Len(t, publisher.Packs(xcontext.Configs(s.ctx).Kafka.PayoutTopic), 3)

	payouts, err := s.payoutRepo.GetByChallengeID(s.ctx, id)
	require.NoError(t, err)
	for _, p := range payouts {
		require.Equal(t, entity.PayoutStatusDispatched, p.Status)
	}
}

type countJob struct {
	runs chan struct{}
}

func (j *countJob) Do(context.Context) { j.runs <- struct{}{} }
func (j *countJob) RunNow() bool       { return true }
func (j *countJob) Next() time.Time    { return time.Now().Add(10 * time.Millisecond) }

func TestCronJobManager(t *testing.T) {
	ctx := testutil.NewMockContext()
	job := &countJob{runs: make(chan struct{}, 16)}

	m := NewCronJobManager()
	m.Register(job)

	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-job.runs:
		case <-time.After(time.Second):
			t.Fatal("job was not run")
		}
	}

	m.Cancel(ctx)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
