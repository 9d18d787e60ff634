package mocks

import (
	"context"

	"github.com/habitchain/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

type ChallengeDomain struct {
	mock.Mock
}

func (d *ChallengeDomain) Deploy(arg1 context.Context, arg2 *model.DeployChallengeRequest) (*model.DeployChallengeResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeployChallengeResponse), args.Error(1)
}

func (d *ChallengeDomain) Create(arg1 context.Context, arg2 *model.CreateChallengeRequest) (*model.CreateChallengeResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateChallengeResponse), args.Error(1)
}

func (d *ChallengeDomain) Join(arg1 context.Context, arg2 *model.JoinChallengeRequest) (*model.JoinChallengeResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.JoinChallengeResponse), args.Error(1)
}

func (d *ChallengeDomain) CompleteTask(arg1 context.Context, arg2 *model.CompleteTaskRequest) (*model.CompleteTaskResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompleteTaskResponse), args.Error(1)
}

func (d *ChallengeDomain) Eliminate(arg1 context.Context, arg2 *model.WeeklyEliminationRequest) (*model.WeeklyEliminationResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeeklyEliminationResponse), args.Error(1)
}

func (d *ChallengeDomain) Distribute(arg1 context.Context, arg2 *model.DistributeWeeklyRewardsRequest) (*model.DistributeWeeklyRewardsResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DistributeWeeklyRewardsResponse), args.Error(1)
}

func (d *ChallengeDomain) End(arg1 context.Context, arg2 *model.EndChallengeRequest) (*model.EndChallengeResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EndChallengeResponse), args.Error(1)
}

func (d *ChallengeDomain) GetChallengeInfo(arg1 context.Context, arg2 *model.GetChallengeInfoRequest) (*model.GetChallengeInfoResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetChallengeInfoResponse), args.Error(1)
}

func (d *ChallengeDomain) GetParticipantState(arg1 context.Context, arg2 *model.GetParticipantStateRequest) (*model.GetParticipantStateResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetParticipantStateResponse), args.Error(1)
}

func (d *ChallengeDomain) GetWeeklyRanking(arg1 context.Context, arg2 *model.GetWeeklyRankingRequest) (*model.GetWeeklyRankingResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetWeeklyRankingResponse), args.Error(1)
}

func (d *ChallengeDomain) GetChallenges(arg1 context.Context, arg2 *model.GetChallengesRequest) (*model.GetChallengesResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetChallengesResponse), args.Error(1)
}

func (d *ChallengeDomain) GetPayouts(arg1 context.Context, arg2 *model.GetPayoutsRequest) (*model.GetPayoutsResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetPayoutsResponse), args.Error(1)
}

func (d *ChallengeDomain) GetNonce(arg1 context.Context, arg2 *model.GetNonceRequest) (*model.GetNonceResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetNonceResponse), args.Error(1)
}

func (d *ChallengeDomain) Audit(arg1 context.Context, arg2 *model.AuditChallengeRequest) (*model.AuditChallengeResponse, error) {
	args := d.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditChallengeResponse), args.Error(1)
}
