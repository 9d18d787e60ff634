package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/habitchain/backend/internal/domain/challenge"
	"github.com/habitchain/backend/internal/domain/statistic"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/habitchain/backend/pkg/xredis"
	"github.com/puzpuzpuz/xsync"
	"gorm.io/gorm"

	internalcommon "github.com/habitchain/backend/internal/common"
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 100
)

type ChallengeDomain interface {
	Deploy(context.Context, *model.DeployChallengeRequest) (*model.DeployChallengeResponse, error)
	Create(context.Context, *model.CreateChallengeRequest) (*model.CreateChallengeResponse, error)
	Join(context.Context, *model.JoinChallengeRequest) (*model.JoinChallengeResponse, error)
	CompleteTask(context.Context, *model.CompleteTaskRequest) (*model.CompleteTaskResponse, error)
	Eliminate(context.Context, *model.WeeklyEliminationRequest) (*model.WeeklyEliminationResponse, error)
	Distribute(context.Context, *model.DistributeWeeklyRewardsRequest) (*model.DistributeWeeklyRewardsResponse, error)
	End(context.Context, *model.EndChallengeRequest) (*model.EndChallengeResponse, error)

	GetChallengeInfo(context.Context, *model.GetChallengeInfoRequest) (*model.GetChallengeInfoResponse, error)
	GetParticipantState(context.Context, *model.GetParticipantStateRequest) (*model.GetParticipantStateResponse, error)
	GetWeeklyRanking(context.Context, *model.GetWeeklyRankingRequest) (*model.GetWeeklyRankingResponse, error)
	GetChallenges(context.Context, *model.GetChallengesRequest) (*model.GetChallengesResponse, error)
	GetPayouts(context.Context, *model.GetPayoutsRequest) (*model.GetPayoutsResponse, error)
	GetNonce(context.Context, *model.GetNonceRequest) (*model.GetNonceResponse, error)
	Audit(context.Context, *model.AuditChallengeRequest) (*model.AuditChallengeResponse, error)
}

type challengeDomain struct {
	challengeRepo   repository.ChallengeRepository
	participantRepo repository.ParticipantRepository
	ledgerRepo      repository.LedgerTransactionRepository
	payoutRepo      repository.PayoutRepository
	accountRepo     repository.AccountRepository
	depositRepo     repository.DepositRepository
	leaderboard     statistic.Leaderboard
	redisClient     xredis.Client
	publisher       pubsub.Publisher

	// Operations on the same instance are applied one at a time.
	instanceLocks *xsync.MapOf[string, *sync.Mutex]
	now           func() time.Time
}

func NewChallengeDomain(
	challengeRepo repository.ChallengeRepository,
	participantRepo repository.ParticipantRepository,
	ledgerRepo repository.LedgerTransactionRepository,
	payoutRepo repository.PayoutRepository,
	accountRepo repository.AccountRepository,
	depositRepo repository.DepositRepository,
	leaderboard statistic.Leaderboard,
	redisClient xredis.Client,
	publisher pubsub.Publisher,
) *challengeDomain {
	return &challengeDomain{
		challengeRepo:   challengeRepo,
		participantRepo: participantRepo,
		ledgerRepo:      ledgerRepo,
		payoutRepo:      payoutRepo,
		accountRepo:     accountRepo,
		depositRepo:     depositRepo,
		leaderboard:     leaderboard,
		redisClient:     redisClient,
		publisher:       publisher,
		instanceLocks:   xsync.NewMapOf[*sync.Mutex](),
		now:             time.Now,
	}
}

func (d *challengeDomain) Deploy(
	ctx context.Context, req *model.DeployChallengeRequest,
) (*model.DeployChallengeResponse, error) {
	cfg := xcontext.Configs(ctx).Challenge

	if req.Creator != "" && !common.IsHexAddress(req.Creator) {
		return nil, errorx.New(errorx.BadRequest, "Invalid creator address")
	}

	if req.FeeSink != "" && !common.IsHexAddress(req.FeeSink) {
		return nil, errorx.New(errorx.BadRequest, "Invalid fee sink address")
	}

	creator := req.Creator
	requestUserID := xcontext.RequestUserID(ctx)
	signed := common.IsHexAddress(requestUserID)
	if signed {
		// A signer deploys for itself. Only the operator picks the fee sink.
		caller := common.HexToAddress(requestUserID)
		if creator == "" {
			creator = caller.Hex()
		}

		if common.HexToAddress(creator) != caller {
			return nil, errorx.New(errorx.PermissionDenied, "Cannot deploy a challenge for another creator")
		}

		if req.FeeSink != "" && caller != addressFromHex(cfg.OperatorAddress) {
			return nil, errorx.New(errorx.PermissionDenied, "Only the operator can set the fee sink")
		}
	}

	if creator == "" {
		creator = cfg.OperatorAddress
	}

	if !common.IsHexAddress(creator) {
		return nil, errorx.New(errorx.BadRequest, "Invalid creator address")
	}

	feeSink := req.FeeSink
	if feeSink == "" {
		feeSink = cfg.FeeSinkAddress
	}

	if feeSink != "" && !common.IsHexAddress(feeSink) {
		return nil, errorx.New(errorx.BadRequest, "Invalid fee sink address")
	}

	instance := &entity.Challenge{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Creator:       common.HexToAddress(creator).Hex(),
		FeeSink:       addressToHex(addressFromHex(feeSink)),
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if signed {
		if err := consumeNonce(txCtx, d.accountRepo, common.HexToAddress(requestUserID)); err != nil {
			return nil, err
		}
	}

	if err := d.challengeRepo.Create(txCtx, instance); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create challenge: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeployChallengeResponse{ID: instance.ID}, nil
}

func (d *challengeDomain) Create(
	ctx context.Context, req *model.CreateChallengeRequest,
) (*model.CreateChallengeResponse, error) {
	receipt, err := d.apply(ctx, req.ChallengeID, "", &challenge.CreateChallenge{
		EntryFee:        req.EntryFee,
		StartTime:       req.StartTime,
		MaxParticipants: req.MaxParticipants,
		Name:            req.Name,
		Description:     req.Description,
	})
	if err != nil {
		return nil, err
	}

	return &model.CreateChallengeResponse{Receipt: *receipt}, nil
}

func (d *challengeDomain) Join(
	ctx context.Context, req *model.JoinChallengeRequest,
) (*model.JoinChallengeResponse, error) {
	if req.Deposit == "" {
		return nil, errorx.New(errorx.BadRequest, "Require deposit")
	}

	receipt, err := d.apply(ctx, req.ChallengeID, req.Deposit, &challenge.JoinChallenge{})
	if err != nil {
		return nil, err
	}

	return &model.JoinChallengeResponse{Receipt: *receipt}, nil
}

func (d *challengeDomain) CompleteTask(
	ctx context.Context, req *model.CompleteTaskRequest,
) (*model.CompleteTaskResponse, error) {
	receipt, err := d.apply(ctx, req.ChallengeID, "", &challenge.CompleteTask{
		TaskID:       req.TaskID,
		PointsEarned: req.PointsEarned,
		Week:         req.Week,
	})
	if err != nil {
		return nil, err
	}

	return &model.CompleteTaskResponse{Receipt: *receipt}, nil
}

func (d *challengeDomain) Eliminate(
	ctx context.Context, req *model.WeeklyEliminationRequest,
) (*model.WeeklyEliminationResponse, error) {
	if !common.IsHexAddress(req.Participant) {
		return nil, errorx.New(errorx.BadRequest, "Invalid participant address")
	}

	receipt, err := d.apply(ctx, req.ChallengeID, "", &challenge.WeeklyElimination{
		Week:        req.Week,
		Participant: common.HexToAddress(req.Participant),
	})
	if err != nil {
		return nil, err
	}

	return &model.WeeklyEliminationResponse{Receipt: *receipt}, nil
}

func (d *challengeDomain) Distribute(
	ctx context.Context, req *model.DistributeWeeklyRewardsRequest,
) (*model.DistributeWeeklyRewardsResponse, error) {
	for _, w := range []string{req.Winner1, req.Winner2, req.Winner3} {
		if !common.IsHexAddress(w) {
			return nil, errorx.New(errorx.BadRequest, "Invalid winner address %s", w)
		}
	}

	receipt, err := d.apply(ctx, req.ChallengeID, "", &challenge.DistributeWeeklyRewards{
		Week:    req.Week,
		Winner1: common.HexToAddress(req.Winner1),
		Winner2: common.HexToAddress(req.Winner2),
		Winner3: common.HexToAddress(req.Winner3),
	})
	if err != nil {
		return nil, err
	}

	return &model.DistributeWeeklyRewardsResponse{Receipt: *receipt}, nil
}

func (d *challengeDomain) End(
	ctx context.Context, req *model.EndChallengeRequest,
) (*model.EndChallengeResponse, error) {
	receipt, err := d.apply(ctx, req.ChallengeID, "", &challenge.EndChallenge{})
	if err != nil {
		return nil, err
	}

	return &model.EndChallengeResponse{Receipt: *receipt}, nil
}

func (d *challengeDomain) GetChallengeInfo(
	ctx context.Context, req *model.GetChallengeInfoRequest,
) (*model.GetChallengeInfoResponse, error) {
	key := internalcommon.RedisKeyChallengeInfo(req.ChallengeID)

	var cached model.Challenge
	if err := d.redisClient.GetObj(ctx, key, &cached); err == nil {
		return &model.GetChallengeInfoResponse{Challenge: cached}, nil
	}

	instance, err := d.challengeRepo.GetByID(ctx, req.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return nil, errorx.Unknown
	}

	result := model.ConvertChallenge(instance)
	d.cacheChallengeInfo(ctx, result)

	return &model.GetChallengeInfoResponse{Challenge: result}, nil
}

// cacheChallengeInfo fills an empty cache entry. Entries are only replaced by
// the writer of a newer state, so a read which raced an operation cannot put
// back the older state.
func (d *challengeDomain) cacheChallengeInfo(ctx context.Context, info model.Challenge) {
	key := internalcommon.RedisKeyChallengeInfo(info.ID)
	if err := d.redisClient.SetObjNX(ctx, key, info, internalcommon.ChallengeInfoCacheTTL); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache challenge info: %v", err)
	}
}

func (d *challengeDomain) GetParticipantState(
	ctx context.Context, req *model.GetParticipantStateRequest,
) (*model.GetParticipantStateResponse, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, errorx.New(errorx.BadRequest, "Invalid address")
	}

	address := common.HexToAddress(req.Address).Hex()
	participant, err := d.participantRepo.Get(ctx, req.ChallengeID, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Addresses which never joined have a zero record.
			return &model.GetParticipantStateResponse{
				Participant: model.Participant{Address: address},
			}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetParticipantStateResponse{Participant: model.ConvertParticipant(participant)}
	if participant.IsEliminated {
		return resp, nil
	}

	instance, err := d.challengeRepo.GetByID(ctx, req.ChallengeID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return nil, errorx.Unknown
	}

	resp.Rank, err = d.leaderboard.GetRank(ctx, req.ChallengeID, instance.CurrentWeek, address)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (d *challengeDomain) GetWeeklyRanking(
	ctx context.Context, req *model.GetWeeklyRankingRequest,
) (*model.GetWeeklyRankingResponse, error) {
	if req.Week < 1 || req.Week > challenge.NumWeeks {
		return nil, errorx.New(errorx.BadRequest, "Invalid week")
	}

	if req.Limit == 0 {
		req.Limit = defaultRankingLimit
	}

	if req.Limit < 0 || req.Limit > maxRankingLimit || req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid offset or limit")
	}

	ranking, err := d.leaderboard.GetWeeklyRanking(ctx, req.ChallengeID, req.Week, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetWeeklyRankingResponse{Ranking: ranking}, nil
}

func (d *challengeDomain) GetChallenges(
	ctx context.Context, req *model.GetChallengesRequest,
) (*model.GetChallengesResponse, error) {
	filter := repository.ChallengeFilter{
		ActiveOnly: req.ActiveOnly,
		Offset:     req.Offset,
		Limit:      req.Limit,
	}

	if req.Creator != "" {
		if !common.IsHexAddress(req.Creator) {
			return nil, errorx.New(errorx.BadRequest, "Invalid creator address")
		}

		filter.Creator = common.HexToAddress(req.Creator).Hex()
	}

	instances, err := d.challengeRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get challenges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Challenge{}
	for i := range instances {
		result = append(result, model.ConvertChallenge(&instances[i]))
	}

	return &model.GetChallengesResponse{Challenges: result}, nil
}

func (d *challengeDomain) GetPayouts(
	ctx context.Context, req *model.GetPayoutsRequest,
) (*model.GetPayoutsResponse, error) {
	var payouts []entity.Payout
	var err error
	switch {
	case req.ChallengeID != 0:
		payouts, err = d.payoutRepo.GetByChallengeID(ctx, req.ChallengeID)
	case common.IsHexAddress(req.Address):
		payouts, err = d.payoutRepo.GetByAddress(ctx, common.HexToAddress(req.Address).Hex())
	default:
		return nil, errorx.New(errorx.BadRequest, "Require challenge id or address")
	}

	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payouts: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Payout{}
	for i := range payouts {
		if req.ChallengeID != 0 && req.Address != "" &&
			payouts[i].ToAddress != common.HexToAddress(req.Address).Hex() {
			continue
		}

		result = append(result, model.ConvertPayout(&payouts[i]))
	}

	return &model.GetPayoutsResponse{Payouts: result}, nil
}

func (d *challengeDomain) GetNonce(
	ctx context.Context, req *model.GetNonceRequest,
) (*model.GetNonceResponse, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, errorx.New(errorx.BadRequest, "Invalid address")
	}

	account, err := d.accountRepo.Get(ctx, common.HexToAddress(req.Address).Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetNonceResponse{Nonce: 0}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetNonceResponse{Nonce: account.Nonce}, nil
}

// Audit replays the ledger of a challenge from its deployment and compares the
// result with the stored state.
func (d *challengeDomain) Audit(
	ctx context.Context, req *model.AuditChallengeRequest,
) (*model.AuditChallengeResponse, error) {
	stored, _, err := d.loadMachine(ctx, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	txs, err := d.ledgerRepo.GetByChallengeID(ctx, req.ChallengeID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger: %v", err)
		return nil, errorx.Unknown
	}

	replayed := challenge.New(stored.Deployment())
	for i, tx := range txs {
		action, err := challenge.DeserializeAction(tx.Action, tx.Payload)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot deserialize transaction %d: %v", tx.Sequence, err)
			return nil, errorx.Unknown
		}

		diff, err := d.auditDeposit(ctx, &txs[i])
		if err != nil {
			return nil, err
		}

		if diff != "" {
			return &model.AuditChallengeResponse{Transactions: len(txs), Consistent: false, Diff: diff}, nil
		}

		call := challenge.Call{Caller: addressFromHex(tx.Caller), Payment: tx.Payment, Time: tx.Time}
		receipt, err := replayed.Apply(call, action)
		if err != nil {
			return &model.AuditChallengeResponse{
				Transactions: len(txs),
				Consistent:   false,
				Diff:         fmt.Sprintf("transaction %d rejected: %v", tx.Sequence, err),
			}, nil
		}

		if receipt.Sequence != tx.Sequence {
			return &model.AuditChallengeResponse{
				Transactions: len(txs),
				Consistent:   false,
				Diff:         fmt.Sprintf("sequence gap at transaction %d", tx.Sequence),
			}, nil
		}
	}

	diff := cmp.Diff(stored.ChallengeInfo(), replayed.ChallengeInfo()) +
		cmp.Diff(stored.Participants(), replayed.Participants())

	return &model.AuditChallengeResponse{
		Transactions: len(txs),
		Consistent:   diff == "",
		Diff:         diff,
	}, nil
}

// auditDeposit checks that a paid transaction was funded by the deposit it
// names, and that the deposit funded nothing else.
func (d *challengeDomain) auditDeposit(ctx context.Context, tx *entity.LedgerTransaction) (string, error) {
	if tx.Payment == 0 && tx.Deposit == "" {
		return "", nil
	}

	if tx.Deposit == "" {
		return fmt.Sprintf("transaction %d has a payment without deposit", tx.Sequence), nil
	}

	deposit, err := d.depositRepo.Get(ctx, tx.Deposit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Sprintf("transaction %d uses unknown deposit %s", tx.Sequence, tx.Deposit), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get deposit: %v", err)
		return "", errorx.Unknown
	}

	if deposit.Status != entity.DepositStatusUsed ||
		deposit.Sequence != tx.Sequence ||
		deposit.ChallengeID != tx.ChallengeID ||
		deposit.FromAddress != tx.Caller ||
		deposit.Amount != tx.Payment {
		return fmt.Sprintf("transaction %d does not match deposit %s", tx.Sequence, tx.Deposit), nil
	}

	return "", nil
}

func (d *challengeDomain) loadMachine(
	ctx context.Context, challengeID int64,
) (*challenge.Machine, *entity.Challenge, error) {
	instance, err := d.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errorx.New(errorx.NotFound, "Not found challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get challenge: %v", err)
		return nil, nil, errorx.Unknown
	}

	participants, err := d.participantRepo.GetByChallengeID(ctx, challengeID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, nil, errorx.Unknown
	}

	states := make([]challenge.Participant, 0, len(participants))
	for i := range participants {
		states = append(states, convertParticipantState(&participants[i]))
	}

	machine := challenge.Restore(convertDeployment(instance), convertChallengeState(instance), states)
	return machine, instance, nil
}

// consumeNonce accepts the nonce of an external signer at most once. Calls made
// without a nonce are internal and skip the check.
func consumeNonce(ctx context.Context, accountRepo repository.AccountRepository, caller common.Address) error {
	nonce, ok := xcontext.CallNonce(ctx)
	if !ok {
		return nil
	}

	if err := accountRepo.CreateIfNotExists(ctx, caller.Hex()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create account: %v", err)
		return errorx.Unknown
	}

	if err := accountRepo.IncreaseNonce(ctx, caller.Hex(), nonce); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.InvalidNonce, "Invalid nonce")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase nonce: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *challengeDomain) lockInstance(challengeID int64) func() {
	mutex, _ := d.instanceLocks.LoadOrStore(strconv.FormatInt(challengeID, 10), &sync.Mutex{})
	mutex.Lock()
	return mutex.Unlock
}

// apply runs one operation against an instance. The nonce of an external
// signer, the used deposit, the new state, the ledger entry and the owed
// payouts are committed in one transaction. Notifications are sent after the
// commit.
func (d *challengeDomain) apply(
	ctx context.Context, challengeID int64, depositHash string, action challenge.Action,
) (*model.Receipt, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	if !common.IsHexAddress(requestUserID) {
		return nil, errorx.New(errorx.Unauthenticated, "Unknown caller")
	}
	caller := common.HexToAddress(requestUserID)

	defer d.lockInstance(challengeID)()

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := consumeNonce(txCtx, d.accountRepo, caller); err != nil {
		return nil, err
	}

	machine, instance, err := d.loadMachine(txCtx, challengeID)
	if err != nil {
		return nil, err
	}

	var payment uint64
	if depositHash != "" {
		deposit, err := d.fundingDeposit(txCtx, challengeID, caller, depositHash)
		if err != nil {
			return nil, err
		}

		payment = deposit.Amount
	}

	prevSequence := instance.Sequence
	call := challenge.Call{Caller: caller, Payment: payment, Time: uint64(d.now().Unix())}
	receipt, err := machine.Apply(call, action)
	if err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			countOperation(action.Type(), errx.Code)
			return nil, err
		}

		xcontext.Logger(txCtx).Errorf("Cannot apply %s: %v", action.Type(), err)
		return nil, errorx.Unknown
	}

	if depositHash != "" {
		err := d.depositRepo.UpdateStatus(
			txCtx, depositHash, entity.DepositStatusConfirmed, entity.DepositStatusUsed, receipt.Sequence)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.DepositAlreadyUsed, "Deposit is already used or refunded")
			}

			xcontext.Logger(txCtx).Errorf("Cannot use deposit: %v", err)
			return nil, errorx.Unknown
		}
	}

	applyChallengeState(instance, machine.ChallengeInfo())
	if err := d.challengeRepo.UpdateState(txCtx, instance, prevSequence); err != nil {
		xcontext.Logger(txCtx).Errorf("Cannot update challenge state: %v", err)
		return nil, errorx.Unknown
	}

	for _, addr := range receipt.Touched {
		participant := convertParticipantEntity(challengeID, machine.ParticipantState(addr))
		if err := d.participantRepo.Upsert(txCtx, participant); err != nil {
			xcontext.Logger(txCtx).Errorf("Cannot upsert participant: %v", err)
			return nil, errorx.Unknown
		}
	}

	payload := challenge.SerializeAction(action)
	err = d.ledgerRepo.Create(txCtx, &entity.LedgerTransaction{
		ChallengeID: challengeID,
		Sequence:    receipt.Sequence,
		Action:      string(receipt.Action),
		Caller:      caller.Hex(),
		Payment:     payment,
		Deposit:     depositHash,
		Time:        call.Time,
		Payload:     entity.Map(payload),
		Touched:     entity.Array[string](convertAddresses(receipt.Touched)),
	})
	if err != nil {
		xcontext.Logger(txCtx).Errorf("Cannot create ledger transaction: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.payoutRepo.CreateMany(txCtx, convertPayouts(challengeID, receipt)); err != nil {
		xcontext.Logger(txCtx).Errorf("Cannot create payouts: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(txCtx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	countOperation(action.Type(), 0)
	countAmounts(receipt)
	d.afterCommit(ctx, model.ConvertChallenge(instance), depositHash, call, action, receipt, payload)

	result := convertReceipt(challengeID, receipt)
	return &result, nil
}

// fundingDeposit returns the confirmed deposit which pays for an operation of
// caller.
func (d *challengeDomain) fundingDeposit(
	ctx context.Context, challengeID int64, caller common.Address, txHash string,
) (*entity.Deposit, error) {
	deposit, err := d.depositRepo.Get(ctx, txHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidDeposit, "Not found deposit")
		}

		xcontext.Logger(ctx).Errorf("Cannot get deposit: %v", err)
		return nil, errorx.Unknown
	}

	if deposit.ChallengeID != challengeID || deposit.FromAddress != caller.Hex() {
		return nil, errorx.New(errorx.InvalidDeposit, "Deposit is not made by caller to this challenge")
	}

	if deposit.Status != entity.DepositStatusConfirmed {
		return nil, errorx.New(errorx.DepositAlreadyUsed, "Deposit is already used or refunded")
	}

	return deposit, nil
}

// afterCommit refreshes the caches and notifies subscribers. Failures are only
// logged, the operation has already been accepted.
func (d *challengeDomain) afterCommit(
	ctx context.Context,
	info model.Challenge,
	depositHash string,
	call challenge.Call,
	action challenge.Action,
	receipt *challenge.Receipt,
	payload map[string]any,
) {
	challengeID := info.ID
	key := internalcommon.RedisKeyChallengeInfo(challengeID)
	if err := d.redisClient.SetObj(ctx, key, info, internalcommon.ChallengeInfoCacheTTL); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh challenge info: %v", err)
		if err := d.redisClient.Del(ctx, key); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot invalidate challenge info: %v", err)
		}
	}

	switch a := action.(type) {
	case *challenge.CompleteTask:
		err := d.leaderboard.IncreasePoints(ctx, challengeID, a.Week, call.Caller.Hex(), a.PointsEarned)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot increase leaderboard points: %v", err)
		}

	case *challenge.WeeklyElimination:
		if err := d.leaderboard.RemoveParticipant(ctx, challengeID, a.Participant.Hex()); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot remove participant from leaderboard: %v", err)
		}
	}

	event := model.ChallengeEvent{
		ChallengeID: challengeID,
		Sequence:    receipt.Sequence,
		Action:      string(receipt.Action),
		Caller:      call.Caller.Hex(),
		Payment:     call.Payment,
		Deposit:     depositHash,
		Time:        call.Time,
		Payload:     payload,
		Transfers:   convertTransfers(receipt.Transfers),
		Touched:     convertAddresses(receipt.Touched),
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal challenge event: %v", err)
		return
	}

	err = d.publisher.Publish(ctx, xcontext.Configs(ctx).Kafka.EventTopic, &pubsub.Pack{
		Key: []byte(strconv.FormatInt(challengeID, 10)),
		Msg: b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish challenge event: %v", err)
	}
}

func countOperation(action challenge.ActionType, code errorx.Code) {
	internalcommon.PromCounters[internalcommon.ChallengeOperationTotal].
		WithLabelValues(string(action), strconv.Itoa(int(code))).Inc()
}

func countAmounts(receipt *challenge.Receipt) {
	if receipt.Deposit > 0 {
		internalcommon.PromCounters[internalcommon.ChallengeDepositAmount].
			WithLabelValues().Add(float64(receipt.Deposit))
	}

	for _, t := range receipt.Transfers {
		internalcommon.PromCounters[internalcommon.ChallengePayoutAmount].
			WithLabelValues(string(t.Kind)).Add(float64(t.Amount))
	}
}
