package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm"

	internalcommon "github.com/habitchain/backend/internal/common"
)

// DepositDomain records the transfers into custody confirmed by the custody
// service. A deposit pays for one join, or goes back to its sender.
type DepositDomain interface {
	Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time)
	Refund(context.Context, *model.RefundDepositRequest) (*model.RefundDepositResponse, error)
	GetDeposits(context.Context, *model.GetDepositsRequest) (*model.GetDepositsResponse, error)
}

type depositDomain struct {
	challengeRepo repository.ChallengeRepository
	depositRepo   repository.DepositRepository
	payoutRepo    repository.PayoutRepository
	accountRepo   repository.AccountRepository
}

func NewDepositDomain(
	challengeRepo repository.ChallengeRepository,
	depositRepo repository.DepositRepository,
	payoutRepo repository.PayoutRepository,
	accountRepo repository.AccountRepository,
) *depositDomain {
	return &depositDomain{
		challengeRepo: challengeRepo,
		depositRepo:   depositRepo,
		payoutRepo:    payoutRepo,
		accountRepo:   accountRepo,
	}
}

func (d *depositDomain) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var msg model.DepositMessage
	if err := json.Unmarshal(pack.Msg, &msg); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to unmarshal deposit: %v", err)
		return
	}

	if msg.TxHash == "" || msg.Amount == 0 || !common.IsHexAddress(msg.FromAddress) {
		xcontext.Logger(ctx).Errorf("Receive invalid deposit %q", msg.TxHash)
		return
	}

	if _, err := d.challengeRepo.GetByID(ctx, msg.ChallengeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Deposit %s is made to unknown challenge %d", msg.TxHash, msg.ChallengeID)
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return
	}

	// Redelivered messages keep the first record.
	err := d.depositRepo.Create(ctx, &entity.Deposit{
		TxHash:      msg.TxHash,
		ChallengeID: msg.ChallengeID,
		FromAddress: common.HexToAddress(msg.FromAddress).Hex(),
		Amount:      msg.Amount,
		Status:      entity.DepositStatusConfirmed,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create deposit %s: %v", msg.TxHash, err)
		return
	}

	countDeposit(entity.DepositStatusConfirmed)
}

// Refund gives an unused deposit back to its sender. The transfer is a pending
// payout dispatched with the others.
func (d *depositDomain) Refund(
	ctx context.Context, req *model.RefundDepositRequest,
) (*model.RefundDepositResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	if !common.IsHexAddress(requestUserID) {
		return nil, errorx.New(errorx.Unauthenticated, "Unknown caller")
	}
	caller := common.HexToAddress(requestUserID)

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := consumeNonce(txCtx, d.accountRepo, caller); err != nil {
		return nil, err
	}

	deposit, err := d.depositRepo.Get(txCtx, req.Deposit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidDeposit, "Not found deposit")
		}

		xcontext.Logger(ctx).Errorf("Cannot get deposit: %v", err)
		return nil, errorx.Unknown
	}

	if deposit.ChallengeID != req.ChallengeID || deposit.FromAddress != caller.Hex() {
		return nil, errorx.New(errorx.InvalidDeposit, "Deposit is not made by caller to this challenge")
	}

	err = d.depositRepo.UpdateStatus(txCtx, deposit.TxHash, entity.DepositStatusConfirmed, entity.DepositStatusRefunded, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.DepositAlreadyUsed, "Deposit is already used or refunded")
		}

		xcontext.Logger(ctx).Errorf("Cannot refund deposit: %v", err)
		return nil, errorx.Unknown
	}

	payout := entity.Payout{
		Base:        entity.Base{ID: uuid.NewString()},
		ChallengeID: deposit.ChallengeID,
		Kind:        entity.PayoutKindRefund,
		ToAddress:   deposit.FromAddress,
		Amount:      deposit.Amount,
		Status:      entity.PayoutStatusPending,
	}
	if err := d.payoutRepo.CreateMany(txCtx, []entity.Payout{payout}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create refund payout: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	countDeposit(entity.DepositStatusRefunded)
	return &model.RefundDepositResponse{Payout: model.ConvertPayout(&payout)}, nil
}

func (d *depositDomain) GetDeposits(
	ctx context.Context, req *model.GetDepositsRequest,
) (*model.GetDepositsResponse, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, errorx.New(errorx.BadRequest, "Invalid address")
	}

	deposits, err := d.depositRepo.GetByAddress(ctx, common.HexToAddress(req.Address).Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get deposits: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Deposit{}
	for i := range deposits {
		result = append(result, model.ConvertDeposit(&deposits[i]))
	}

	return &model.GetDepositsResponse{Deposits: result}, nil
}

func countDeposit(status entity.DepositStatusType) {
	internalcommon.PromCounters[internalcommon.ChallengeDepositTotal].
		WithLabelValues(string(status)).Inc()
}
