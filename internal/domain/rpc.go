package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/ethutil"
	"github.com/habitchain/backend/pkg/xcontext"

	internalcommon "github.com/habitchain/backend/internal/common"
)

// ChallengeRPC exposes ChallengeDomain as json-rpc methods, e.g. challenge_join.
// Mutating methods are authenticated by a signature of the caller.
type ChallengeRPC struct {
	ctx             context.Context
	challengeDomain ChallengeDomain
	depositDomain   DepositDomain
}

// NewChallengeRPC returns the rpc receiver. The context provides the configs,
// logger and database to every call.
func NewChallengeRPC(
	ctx context.Context, challengeDomain ChallengeDomain, depositDomain DepositDomain,
) *ChallengeRPC {
	return &ChallengeRPC{ctx: ctx, challengeDomain: challengeDomain, depositDomain: depositDomain}
}

func (s *ChallengeRPC) Deploy(
	ctx context.Context, call model.SignedCall, req model.DeployChallengeRequest,
) (resp *model.DeployChallengeResponse, err error) {
	defer s.observe("deploy", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "deploy", 0, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.Deploy(ctx, &req)
}

func (s *ChallengeRPC) Create(
	ctx context.Context, call model.SignedCall, req model.CreateChallengeRequest,
) (resp *model.CreateChallengeResponse, err error) {
	defer s.observe("create", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "create", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.Create(ctx, &req)
}

func (s *ChallengeRPC) Join(
	ctx context.Context, call model.SignedCall, req model.JoinChallengeRequest,
) (resp *model.JoinChallengeResponse, err error) {
	defer s.observe("join", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "join", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.Join(ctx, &req)
}

func (s *ChallengeRPC) CompleteTask(
	ctx context.Context, call model.SignedCall, req model.CompleteTaskRequest,
) (resp *model.CompleteTaskResponse, err error) {
	defer s.observe("completeTask", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "completeTask", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.CompleteTask(ctx, &req)
}

func (s *ChallengeRPC) WeeklyElimination(
	ctx context.Context, call model.SignedCall, req model.WeeklyEliminationRequest,
) (resp *model.WeeklyEliminationResponse, err error) {
	defer s.observe("weeklyElimination", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "weeklyElimination", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.Eliminate(ctx, &req)
}

func (s *ChallengeRPC) DistributeWeeklyRewards(
	ctx context.Context, call model.SignedCall, req model.DistributeWeeklyRewardsRequest,
) (resp *model.DistributeWeeklyRewardsResponse, err error) {
	defer s.observe("distributeWeeklyRewards", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "distributeWeeklyRewards", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.Distribute(ctx, &req)
}

func (s *ChallengeRPC) EndChallenge(
	ctx context.Context, call model.SignedCall, req model.EndChallengeRequest,
) (resp *model.EndChallengeResponse, err error) {
	defer s.observe("endChallenge", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "endChallenge", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.challengeDomain.End(ctx, &req)
}

func (s *ChallengeRPC) RefundDeposit(
	ctx context.Context, call model.SignedCall, req model.RefundDepositRequest,
) (resp *model.RefundDepositResponse, err error) {
	defer s.observe("refundDeposit", time.Now(), &err)

	ctx, err = s.authenticate(ctx, "refundDeposit", req.ChallengeID, call, req)
	if err != nil {
		return nil, err
	}

	return s.depositDomain.Refund(ctx, &req)
}

func (s *ChallengeRPC) GetChallengeInfo(
	ctx context.Context, req model.GetChallengeInfoRequest,
) (resp *model.GetChallengeInfoResponse, err error) {
	defer s.observe("getChallengeInfo", time.Now(), &err)
	return s.challengeDomain.GetChallengeInfo(s.with(ctx), &req)
}

func (s *ChallengeRPC) GetParticipantState(
	ctx context.Context, req model.GetParticipantStateRequest,
) (resp *model.GetParticipantStateResponse, err error) {
	defer s.observe("getParticipantState", time.Now(), &err)
	return s.challengeDomain.GetParticipantState(s.with(ctx), &req)
}

func (s *ChallengeRPC) GetWeeklyRanking(
	ctx context.Context, req model.GetWeeklyRankingRequest,
) (resp *model.GetWeeklyRankingResponse, err error) {
	defer s.observe("getWeeklyRanking", time.Now(), &err)
	return s.challengeDomain.GetWeeklyRanking(s.with(ctx), &req)
}

func (s *ChallengeRPC) GetChallenges(
	ctx context.Context, req model.GetChallengesRequest,
) (resp *model.GetChallengesResponse, err error) {
	defer s.observe("getChallenges", time.Now(), &err)
	return s.challengeDomain.GetChallenges(s.with(ctx), &req)
}

func (s *ChallengeRPC) GetPayouts(
	ctx context.Context, req model.GetPayoutsRequest,
) (resp *model.GetPayoutsResponse, err error) {
	defer s.observe("getPayouts", time.Now(), &err)
	return s.challengeDomain.GetPayouts(s.with(ctx), &req)
}

func (s *ChallengeRPC) GetDeposits(
	ctx context.Context, req model.GetDepositsRequest,
) (resp *model.GetDepositsResponse, err error) {
	defer s.observe("getDeposits", time.Now(), &err)
	return s.depositDomain.GetDeposits(s.with(ctx), &req)
}

func (s *ChallengeRPC) GetNonce(
	ctx context.Context, req model.GetNonceRequest,
) (resp *model.GetNonceResponse, err error) {
	defer s.observe("getNonce", time.Now(), &err)
	return s.challengeDomain.GetNonce(s.with(ctx), &req)
}

func (s *ChallengeRPC) Audit(
	ctx context.Context, req model.AuditChallengeRequest,
) (resp *model.AuditChallengeResponse, err error) {
	defer s.observe("audit", time.Now(), &err)
	return s.challengeDomain.Audit(s.with(ctx), &req)
}

// with carries the values of the server context into a request context.
func (s *ChallengeRPC) with(ctx context.Context) context.Context {
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(s.ctx))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(s.ctx))
	ctx = xcontext.WithSnowFlake(ctx, xcontext.SnowFlake(s.ctx))
	ctx = xcontext.WithDB(ctx, xcontext.DB(s.ctx))
	return ctx
}

// authenticate verifies that call.Caller signed the request and returns a
// context acting as the caller.
func (s *ChallengeRPC) authenticate(
	ctx context.Context, method string, instanceID int64, call model.SignedCall, req any,
) (context.Context, error) {
	ctx = s.with(ctx)
	if !common.IsHexAddress(call.Caller) {
		return nil, errorx.New(errorx.Unauthenticated, "Invalid caller address")
	}
	caller := common.HexToAddress(call.Caller)

	payload, err := json.Marshal(req)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal request: %v", err)
		return nil, errorx.Unknown
	}

	message := ethutil.CallMessage(method, instanceID, call.Nonce, payload)
	if err := ethutil.Verify(message, call.Signature, caller); err != nil {
		xcontext.Logger(ctx).Debugf("Reject call %s of %s: %v", method, caller.Hex(), err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid signature")
	}

	ctx = xcontext.WithRequestUserID(ctx, caller.Hex())
	ctx = xcontext.WithCallNonce(ctx, call.Nonce)
	return ctx, nil
}

func (s *ChallengeRPC) observe(method string, start time.Time, err *error) {
	code := 0
	if *err != nil {
		var errx errorx.Error
		if errors.As(*err, &errx) {
			code = int(errx.Code)
		} else {
			code = int(errorx.Unknown.Code)
		}
	}

	internalcommon.PromCounters[internalcommon.RPCRequestTotal].
		WithLabelValues(method, strconv.Itoa(code)).Inc()
	internalcommon.PromHistograms[internalcommon.RPCRequestDurationSeconds].
		WithLabelValues(method).Observe(time.Since(start).Seconds())
}
