package client

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/ethutil"
	"github.com/habitchain/backend/pkg/xcontext"
)

type ChallengeCaller interface {
	Deploy(ctx context.Context, key *ecdsa.PrivateKey, req model.DeployChallengeRequest) (*model.DeployChallengeResponse, error)
	Create(ctx context.Context, key *ecdsa.PrivateKey, req model.CreateChallengeRequest) (*model.CreateChallengeResponse, error)
	Join(ctx context.Context, key *ecdsa.PrivateKey, req model.JoinChallengeRequest) (*model.JoinChallengeResponse, error)
	CompleteTask(ctx context.Context, key *ecdsa.PrivateKey, req model.CompleteTaskRequest) (*model.CompleteTaskResponse, error)
	WeeklyElimination(ctx context.Context, key *ecdsa.PrivateKey, req model.WeeklyEliminationRequest) (*model.WeeklyEliminationResponse, error)
	DistributeWeeklyRewards(ctx context.Context, key *ecdsa.PrivateKey, req model.DistributeWeeklyRewardsRequest) (*model.DistributeWeeklyRewardsResponse, error)
	EndChallenge(ctx context.Context, key *ecdsa.PrivateKey, req model.EndChallengeRequest) (*model.EndChallengeResponse, error)
	RefundDeposit(ctx context.Context, key *ecdsa.PrivateKey, req model.RefundDepositRequest) (*model.RefundDepositResponse, error)

	GetChallengeInfo(ctx context.Context, challengeID int64) (*model.Challenge, error)
	GetParticipantState(ctx context.Context, challengeID int64, address string) (*model.Participant, error)
	GetWeeklyRanking(ctx context.Context, req model.GetWeeklyRankingRequest) ([]model.RankEntry, error)
	GetDeposits(ctx context.Context, address string) ([]model.Deposit, error)
	GetNonce(ctx context.Context, address string) (uint64, error)
	Audit(ctx context.Context, challengeID int64) (*model.AuditChallengeResponse, error)
	Close()
}

type challengeCaller struct {
	client *rpc.Client
}

func NewChallengeCaller(client *rpc.Client) *challengeCaller {
	return &challengeCaller{client: client}
}

func (c *challengeCaller) Deploy(
	ctx context.Context, key *ecdsa.PrivateKey, req model.DeployChallengeRequest,
) (*model.DeployChallengeResponse, error) {
	var result model.DeployChallengeResponse
	if err := c.callSigned(ctx, &result, key, "deploy", 0, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) Create(
	ctx context.Context, key *ecdsa.PrivateKey, req model.CreateChallengeRequest,
) (*model.CreateChallengeResponse, error) {
	var result model.CreateChallengeResponse
	if err := c.callSigned(ctx, &result, key, "create", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) Join(
	ctx context.Context, key *ecdsa.PrivateKey, req model.JoinChallengeRequest,
) (*model.JoinChallengeResponse, error) {
	var result model.JoinChallengeResponse
	if err := c.callSigned(ctx, &result, key, "join", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) CompleteTask(
	ctx context.Context, key *ecdsa.PrivateKey, req model.CompleteTaskRequest,
) (*model.CompleteTaskResponse, error) {
	var result model.CompleteTaskResponse
	if err := c.callSigned(ctx, &result, key, "completeTask", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) WeeklyElimination(
	ctx context.Context, key *ecdsa.PrivateKey, req model.WeeklyEliminationRequest,
) (*model.WeeklyEliminationResponse, error) {
	var result model.WeeklyEliminationResponse
	if err := c.callSigned(ctx, &result, key, "weeklyElimination", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) DistributeWeeklyRewards(
	ctx context.Context, key *ecdsa.PrivateKey, req model.DistributeWeeklyRewardsRequest,
) (*model.DistributeWeeklyRewardsResponse, error) {
	var result model.DistributeWeeklyRewardsResponse
	if err := c.callSigned(ctx, &result, key, "distributeWeeklyRewards", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) EndChallenge(
	ctx context.Context, key *ecdsa.PrivateKey, req model.EndChallengeRequest,
) (*model.EndChallengeResponse, error) {
	var result model.EndChallengeResponse
	if err := c.callSigned(ctx, &result, key, "endChallenge", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) RefundDeposit(
	ctx context.Context, key *ecdsa.PrivateKey, req model.RefundDepositRequest,
) (*model.RefundDepositResponse, error) {
	var result model.RefundDepositResponse
	if err := c.callSigned(ctx, &result, key, "refundDeposit", req.ChallengeID, req); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) GetChallengeInfo(ctx context.Context, challengeID int64) (*model.Challenge, error) {
	var result model.GetChallengeInfoResponse
	err := c.call(ctx, &result, "getChallengeInfo", model.GetChallengeInfoRequest{ChallengeID: challengeID})
	if err != nil {
		return nil, err
	}

	return &result.Challenge, nil
}

func (c *challengeCaller) GetParticipantState(
	ctx context.Context, challengeID int64, address string,
) (*model.Participant, error) {
	var result model.GetParticipantStateResponse
	err := c.call(ctx, &result, "getParticipantState", model.GetParticipantStateRequest{
		ChallengeID: challengeID,
		Address:     address,
	})
	if err != nil {
		return nil, err
	}

	return &result.Participant, nil
}

func (c *challengeCaller) GetWeeklyRanking(
	ctx context.Context, req model.GetWeeklyRankingRequest,
) ([]model.RankEntry, error) {
	var result model.GetWeeklyRankingResponse
	if err := c.call(ctx, &result, "getWeeklyRanking", req); err != nil {
		return nil, err
	}

	return result.Ranking, nil
}

func (c *challengeCaller) GetDeposits(ctx context.Context, address string) ([]model.Deposit, error) {
	var result model.GetDepositsResponse
	if err := c.call(ctx, &result, "getDeposits", model.GetDepositsRequest{Address: address}); err != nil {
		return nil, err
	}

	return result.Deposits, nil
}

func (c *challengeCaller) GetNonce(ctx context.Context, address string) (uint64, error) {
	var result model.GetNonceResponse
	if err := c.call(ctx, &result, "getNonce", model.GetNonceRequest{Address: address}); err != nil {
		return 0, err
	}

	return result.Nonce, nil
}

func (c *challengeCaller) Audit(ctx context.Context, challengeID int64) (*model.AuditChallengeResponse, error) {
	var result model.AuditChallengeResponse
	err := c.call(ctx, &result, "audit", model.AuditChallengeRequest{ChallengeID: challengeID})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *challengeCaller) Close() {
	c.client.Close()
}

// callSigned signs req with the next nonce of key and sends it.
func (c *challengeCaller) callSigned(
	ctx context.Context, result any, key *ecdsa.PrivateKey, method string, challengeID int64, req any,
) error {
	caller := crypto.PubkeyToAddress(key.PublicKey)
	nonce, err := c.GetNonce(ctx, caller.Hex())
	if err != nil {
		return err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	signature, err := ethutil.Sign(key, ethutil.CallMessage(method, challengeID, nonce, payload))
	if err != nil {
		return err
	}

	call := model.SignedCall{Caller: caller.Hex(), Nonce: nonce, Signature: signature}
	return c.call(ctx, result, method, call, req)
}

func (c *challengeCaller) call(ctx context.Context, result any, method string, args ...any) error {
	err := c.client.CallContext(ctx, result, c.fname(ctx, method), args...)
	if err == nil {
		return nil
	}

	// Give back the code of errors returned by the server.
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() >= int(errorx.Unknown.Code) {
		return errorx.New(errorx.Code(rpcErr.ErrorCode()), "%s", rpcErr.Error())
	}

	return err
}

func (c *challengeCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).RPCServer.Name, funcName)
}
