package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/pubsub"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm"

	internalcommon "github.com/habitchain/backend/internal/common"
)

// PayoutDomain hands owed transfers to the custody service and records its
// answers.
type PayoutDomain interface {
	// Dispatch publishes a batch of pending payouts and returns how many were
	// handed over.
	Dispatch(ctx context.Context) int
	Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time)
}

type payoutDomain struct {
	payoutRepo repository.PayoutRepository
	publisher  pubsub.Publisher
}

func NewPayoutDomain(
	payoutRepo repository.PayoutRepository,
	publisher pubsub.Publisher,
) *payoutDomain {
	return &payoutDomain{
		payoutRepo: payoutRepo,
		publisher:  publisher,
	}
}

func (d *payoutDomain) Dispatch(ctx context.Context) int {
	cfg := xcontext.Configs(ctx)
	payouts, err := d.payoutRepo.GetByStatus(ctx, entity.PayoutStatusPending, cfg.Cron.PayoutBatchSize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending payouts: %v", err)
		return 0
	}

	dispatched := 0
	for _, p := range payouts {
		b, err := json.Marshal(model.PayoutMessage{
			PayoutID:    p.ID,
			ChallengeID: p.ChallengeID,
			Kind:        string(p.Kind),
			ToAddress:   p.ToAddress,
			Amount:      p.Amount,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal payout %s: %v", p.ID, err)
			continue
		}

		err = d.publisher.Publish(ctx, cfg.Kafka.PayoutTopic, &pubsub.Pack{Key: []byte(p.ID), Msg: b})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot publish payout %s: %v", p.ID, err)
			continue
		}

		err = d.payoutRepo.UpdateStatus(ctx, p.ID, entity.PayoutStatusPending, entity.PayoutStatusDispatched, "")
		if err != nil {
			// The result may already have been received.
			xcontext.Logger(ctx).Warnf("Cannot mark payout %s as dispatched: %v", p.ID, err)
			continue
		}

		countPayout(p.Kind, entity.PayoutStatusDispatched)
		dispatched++
	}

	return dispatched
}

func (d *payoutDomain) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var result model.PayoutResultMessage
	if err := json.Unmarshal(pack.Msg, &result); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to unmarshal payout result: %v", err)
		return
	}

	payout, err := d.payoutRepo.GetByID(ctx, result.PayoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Receive result of unknown payout %s", result.PayoutID)
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot get payout: %v", err)
		return
	}

	status := entity.PayoutStatusCompleted
	if !result.Success {
		status = entity.PayoutStatusFailed
		xcontext.Logger(ctx).Warnf("Payout %s failed: %s", payout.ID, result.Reason)
	}

	switch payout.Status {
	case entity.PayoutStatusPending, entity.PayoutStatusDispatched:
	default:
		xcontext.Logger(ctx).Warnf("Payout %s is already %s", payout.ID, payout.Status)
		return
	}

	err = d.payoutRepo.UpdateStatus(ctx, payout.ID, payout.Status, status, result.TxHash)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update payout %s: %v", payout.ID, err)
		return
	}

	countPayout(payout.Kind, status)
}

func countPayout(kind entity.PayoutKindType, status entity.PayoutStatusType) {
	internalcommon.PromCounters[internalcommon.ChallengePayoutTotal].
		WithLabelValues(string(kind), string(status)).Inc()
}
