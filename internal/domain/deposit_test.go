package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/testutil"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func depositPack(t *testing.T, msg model.DepositMessage) *pubsub.Pack {
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return &pubsub.Pack{Key: []byte(msg.TxHash), Msg: b}
}

func Test_depositDomain_Subscribe(t *testing.T) {
	ctx := testutil.NewMockContext()
	require.NoError(t, repository.NewChallengeRepository().Create(ctx, &entity.Challenge{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
	}))

	depositRepo := repository.NewDepositRepository()
	d := NewDepositDomain(
		repository.NewChallengeRepository(),
		depositRepo,
		repository.NewPayoutRepository(),
		repository.NewAccountRepository(),
	)

	d.Subscribe(ctx, depositPack(t, model.DepositMessage{
		TxHash:      "0x01",
		ChallengeID: 1,
		FromAddress: strings.ToLower(testutil.Alice.Hex()),
		Amount:      500,
	}), time.Now())

	deposit, err := depositRepo.Get(ctx, "0x01")
	require.NoError(t, err)
	require.Equal(t, testutil.Alice.Hex(), deposit.FromAddress)
	require.Equal(t, uint64(500), deposit.Amount)
	require.Equal(t, entity.DepositStatusConfirmed, deposit.Status)

	// A redelivered message does not reset a used deposit.
	require.NoError(t, depositRepo.UpdateStatus(ctx, "0x01", entity.DepositStatusConfirmed, entity.DepositStatusUsed, 2))
	d.Subscribe(ctx, depositPack(t, model.DepositMessage{
		TxHash:      "0x01",
		ChallengeID: 1,
		FromAddress: testutil.Alice.Hex(),
		Amount:      500,
	}), time.Now())

	deposit, err = depositRepo.Get(ctx, "0x01")
	require.NoError(t, err)
	require.Equal(t, entity.DepositStatusUsed, deposit.Status)

	dropped := []model.DepositMessage{
		{TxHash: "0x02", ChallengeID: 9, FromAddress: testutil.Alice.Hex(), Amount: 500},
		{TxHash: "0x03", ChallengeID: 1, FromAddress: testutil.Alice.Hex(), Amount: 0},
		{TxHash: "0x04", ChallengeID: 1, FromAddress: "alice", Amount: 500},
		{TxHash: "", ChallengeID: 1, FromAddress: testutil.Alice.Hex(), Amount: 500},
	}
	for _, msg := range dropped {
		d.Subscribe(ctx, depositPack(t, msg), time.Now())
	}
	d.Subscribe(ctx, &pubsub.Pack{Msg: []byte("{")}, time.Now())

	deposits, err := depositRepo.GetByAddress(ctx, testutil.Alice.Hex())
	require.NoError(t, err)
	require.Len(t, deposits, 1)
}

func Test_depositDomain_Refund(t *testing.T) {
	s := newChallengeSuite(t)
	id := s.deployAndCreate(t, 100, 5)

	payoutRepo := repository.NewPayoutRepository()
	d := NewDepositDomain(repository.NewChallengeRepository(), s.depositRepo, payoutRepo, repository.NewAccountRepository())

	hash := s.deposit(t, id, testutil.Alice, 100)

	_, err := d.Refund(s.ctx, &model.RefundDepositRequest{ChallengeID: id, Deposit: hash})
	requireCode(t, err, errorx.Unauthenticated)

	_, err = d.Refund(s.as(testutil.Bob), &model.RefundDepositRequest{ChallengeID: id, Deposit: hash})
	requireCode(t, err, errorx.InvalidDeposit)

	_, err = d.Refund(s.as(testutil.Alice), &model.RefundDepositRequest{ChallengeID: id + 1, Deposit: hash})
	requireCode(t, err, errorx.InvalidDeposit)

	_, err = d.Refund(s.as(testutil.Alice), &model.RefundDepositRequest{ChallengeID: id, Deposit: "0xdead"})
	requireCode(t, err, errorx.InvalidDeposit)

	resp, err := d.Refund(xcontext.WithCallNonce(s.as(testutil.Alice), 0), &model.RefundDepositRequest{
		ChallengeID: id, Deposit: hash,
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.PayoutKindRefund), resp.Payout.Kind)
	require.Equal(t, string(entity.PayoutStatusPending), resp.Payout.Status)
	require.Equal(t, uint64(100), resp.Payout.Amount)

	payout, err := payoutRepo.GetByID(s.ctx, resp.Payout.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Alice.Hex(), payout.ToAddress)

	nonce, err := s.domain.GetNonce(s.ctx, &model.GetNonceRequest{Address: testutil.Alice.Hex()})
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce.Nonce)

	// A refunded deposit can neither be refunded again nor pay for a join.
	_, err = d.Refund(s.as(testutil.Alice), &model.RefundDepositRequest{ChallengeID: id, Deposit: hash})
	requireCode(t, err, errorx.DepositAlreadyUsed)

	_, err = s.domain.Join(s.as(testutil.Alice), &model.JoinChallengeRequest{ChallengeID: id, Deposit: hash})
	requireCode(t, err, errorx.DepositAlreadyUsed)

	// Neither can a deposit which paid for a join.
	s.join(t, id, 100, testutil.Bob)
	deposits, err := d.GetDeposits(s.ctx, &model.GetDepositsRequest{Address: testutil.Bob.Hex()})
	require.NoError(t, err)
	require.Len(t, deposits.Deposits, 1)
	require.Equal(t, string(entity.DepositStatusUsed), deposits.Deposits[0].Status)

	_, err = d.Refund(s.as(testutil.Bob), &model.RefundDepositRequest{
		ChallengeID: id, Deposit: deposits.Deposits[0].TxHash,
	})
	requireCode(t, err, errorx.DepositAlreadyUsed)

	_, err = d.GetDeposits(s.ctx, &model.GetDepositsRequest{Address: "bob"})
	requireCode(t, err, errorx.BadRequest)
}
