package domain

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/habitchain/backend/internal/client"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/ethutil"
	"github.com/habitchain/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newRPCSuite(t *testing.T) (*challengeSuite, *rpc.Client, client.ChallengeCaller) {
	s := newChallengeSuite(t)

	server := rpc.NewServer()
	depositDomain := NewDepositDomain(
		repository.NewChallengeRepository(),
		s.depositRepo,
		repository.NewPayoutRepository(),
		repository.NewAccountRepository(),
	)
	require.NoError(t, server.RegisterName("challenge", NewChallengeRPC(s.ctx, s.domain, depositDomain)))
	t.Cleanup(server.Stop)

	rpcClient := rpc.DialInProc(server)
	t.Cleanup(rpcClient.Close)

	return s, rpcClient, client.NewChallengeCaller(rpcClient)
}

func TestChallengeRPC(t *testing.T) {
	s, _, caller := newRPCSuite(t)

	deployed, err := caller.Deploy(s.ctx, testutil.OperatorKey, model.DeployChallengeRequest{})
	require.NoError(t, err)

	created, err := caller.Create(s.ctx, testutil.OperatorKey, model.CreateChallengeRequest{
		ChallengeID:     deployed.ID,
		EntryFee:        1000,
		StartTime:       uint64(s.clock.Unix()),
		MaxParticipants: 5,
		Name:            "Meditation",
	})
	require.NoError(t, err)
	require.Equal(t, "create_challenge", created.Receipt.Action)

	info, err := caller.GetChallengeInfo(s.ctx, deployed.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Operator.Hex(), info.Creator)
	require.Equal(t, "Meditation", info.Name)

	joined, err := caller.Join(s.ctx, testutil.AliceKey, model.JoinChallengeRequest{
		ChallengeID: deployed.ID, Deposit: s.deposit(t, deployed.ID, testutil.Alice, 1000),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1000), joined.Receipt.Deposit)

	_, err = caller.CompleteTask(s.ctx, testutil.AliceKey, model.CompleteTaskRequest{
		ChallengeID: deployed.ID, TaskID: 9, PointsEarned: 12, Week: 1,
	})
	require.NoError(t, err)

	nonce, err := caller.GetNonce(s.ctx, testutil.Alice.Hex())
	require.NoError(t, err)
	require.Equal(t, uint64(2), nonce)

	alice, err := caller.GetParticipantState(s.ctx, deployed.ID, testutil.Alice.Hex())
	require.NoError(t, err)
	require.True(t, alice.IsParticipant)
	require.Equal(t, uint64(12), alice.Week1Points)

	ranking, err := caller.GetWeeklyRanking(s.ctx, model.GetWeeklyRankingRequest{ChallengeID: deployed.ID, Week: 1})
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	require.Equal(t, testutil.Alice.Hex(), ranking[0].Address)

	// Business errors keep their code over the wire.
	short := s.deposit(t, deployed.ID, testutil.Bob, 999)
	_, err = caller.Join(s.ctx, testutil.BobKey, model.JoinChallengeRequest{ChallengeID: deployed.ID, Deposit: short})
	requireCode(t, err, errorx.WrongPaymentAmount)

	// Joining needs a confirmed deposit of the caller.
	_, err = caller.Join(s.ctx, testutil.DaveKey, model.JoinChallengeRequest{ChallengeID: deployed.ID})
	requireCode(t, err, errorx.BadRequest)

	_, err = caller.Join(s.ctx, testutil.DaveKey, model.JoinChallengeRequest{ChallengeID: deployed.ID, Deposit: short})
	requireCode(t, err, errorx.InvalidDeposit)

	// Only the sender gets an unused deposit back, and only once.
	_, err = caller.RefundDeposit(s.ctx, testutil.AliceKey, model.RefundDepositRequest{
		ChallengeID: deployed.ID, Deposit: short,
	})
	requireCode(t, err, errorx.InvalidDeposit)

	refund, err := caller.RefundDeposit(s.ctx, testutil.BobKey, model.RefundDepositRequest{
		ChallengeID: deployed.ID, Deposit: short,
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.PayoutKindRefund), refund.Payout.Kind)
	require.Equal(t, testutil.Bob.Hex(), refund.Payout.ToAddress)
	require.Equal(t, uint64(999), refund.Payout.Amount)

	_, err = caller.RefundDeposit(s.ctx, testutil.BobKey, model.RefundDepositRequest{
		ChallengeID: deployed.ID, Deposit: short,
	})
	requireCode(t, err, errorx.DepositAlreadyUsed)

	deposits, err := caller.GetDeposits(s.ctx, testutil.Bob.Hex())
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, string(entity.DepositStatusRefunded), deposits[0].Status)

	_, err = caller.EndChallenge(s.ctx, testutil.AliceKey, model.EndChallengeRequest{ChallengeID: deployed.ID})
	requireCode(t, err, errorx.Unauthorized)

	_, err = caller.EndChallenge(s.ctx, testutil.OperatorKey, model.EndChallengeRequest{ChallengeID: deployed.ID})
	require.NoError(t, err)

	audit, err := caller.Audit(s.ctx, deployed.ID)
	require.NoError(t, err)
	require.True(t, audit.Consistent, audit.Diff)
	require.Equal(t, 4, audit.Transactions)
}

func TestChallengeRPC_Authentication(t *testing.T) {
	s, rpcClient, caller := newRPCSuite(t)
	id := s.deployAndCreate(t, 1000, 5)

	req := model.JoinChallengeRequest{ChallengeID: id, Deposit: s.deposit(t, id, testutil.Alice, 1000)}
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	// Signed by Bob on behalf of Alice.
	signature, err := ethutil.Sign(testutil.BobKey, ethutil.CallMessage("join", id, 0, payload))
	require.NoError(t, err)

	var resp model.JoinChallengeResponse
	err = rpcClient.CallContext(s.ctx, &resp, "challenge_join",
		model.SignedCall{Caller: testutil.Alice.Hex(), Nonce: 0, Signature: signature}, req)
	requireRPCCode(t, err, errorx.Unauthenticated)

	// Signed for another challenge.
	signature, err = ethutil.Sign(testutil.AliceKey, ethutil.CallMessage("join", id+1, 0, payload))
	require.NoError(t, err)
	err = rpcClient.CallContext(s.ctx, &resp, "challenge_join",
		model.SignedCall{Caller: testutil.Alice.Hex(), Nonce: 0, Signature: signature}, req)
	requireRPCCode(t, err, errorx.Unauthenticated)

	// A valid call cannot be replayed.
	signature, err = ethutil.Sign(testutil.AliceKey, ethutil.CallMessage("join", id, 0, payload))
	require.NoError(t, err)
	call := model.SignedCall{Caller: testutil.Alice.Hex(), Nonce: 0, Signature: signature}
	require.NoError(t, rpcClient.CallContext(s.ctx, &resp, "challenge_join", call, req))
	err = rpcClient.CallContext(s.ctx, &resp, "challenge_join", call, req)
	requireRPCCode(t, err, errorx.InvalidNonce)

	info, err := caller.GetChallengeInfo(s.ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.TotalParticipants)
}

func TestChallengeRPC_Deploy(t *testing.T) {
	s, _, caller := newRPCSuite(t)

	_, err := caller.Deploy(s.ctx, testutil.BobKey, model.DeployChallengeRequest{Creator: testutil.Operator.Hex()})
	requireCode(t, err, errorx.PermissionDenied)

	_, err = caller.Deploy(s.ctx, testutil.BobKey, model.DeployChallengeRequest{FeeSink: testutil.Bob.Hex()})
	requireCode(t, err, errorx.PermissionDenied)

	deployed, err := caller.Deploy(s.ctx, testutil.BobKey, model.DeployChallengeRequest{})
	require.NoError(t, err)

	info, err := caller.GetChallengeInfo(s.ctx, deployed.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Bob.Hex(), info.Creator)
	require.Empty(t, info.FeeSink)

	// Rejected deployments do not consume the nonce.
	nonce, err := caller.GetNonce(s.ctx, testutil.Bob.Hex())
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	deployed, err = caller.Deploy(s.ctx, testutil.OperatorKey, model.DeployChallengeRequest{
		FeeSink: testutil.FeeSink.Hex(),
	})
	require.NoError(t, err)

	info, err = caller.GetChallengeInfo(s.ctx, deployed.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Operator.Hex(), info.Creator)
	require.Equal(t, testutil.FeeSink.Hex(), info.FeeSink)
}

func requireRPCCode(t *testing.T, err error, code errorx.Code) {
	var rpcErr rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int(code), rpcErr.ErrorCode())
}
