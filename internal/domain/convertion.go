package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/habitchain/backend/internal/domain/challenge"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/internal/model"
)

func addressFromHex(s string) common.Address {
	if s == "" {
		return common.Address{}
	}

	return common.HexToAddress(s)
}

func addressToHex(a common.Address) string {
	if a == (common.Address{}) {
		return ""
	}

	return a.Hex()
}

func convertDeployment(c *entity.Challenge) challenge.Deployment {
	return challenge.Deployment{
		InstanceID: uint64(c.ID),
		Creator:    addressFromHex(c.Creator),
		FeeSink:    addressFromHex(c.FeeSink),
	}
}

func convertChallengeState(c *entity.Challenge) challenge.Challenge {
	state := challenge.Challenge{
		Creator:           addressFromHex(c.Creator),
		EntryFee:          c.EntryFee,
		StartTime:         c.StartTime,
		CurrentWeek:       c.CurrentWeek,
		TotalParticipants: c.TotalParticipants,
		MaxParticipants:   c.MaxParticipants,
		IsActive:          c.IsActive,
		Week1Pool:         c.Week1Pool,
		Week2Pool:         c.Week2Pool,
		Week3Pool:         c.Week3Pool,
		Name:              c.Name,
		Description:       c.Description,
		Reserve:           c.Reserve,
		Sequence:          c.Sequence,
	}

	if c.IsCreated {
		state.ID = uint64(c.ID)
	}

	return state
}

// applyChallengeState copies the state of a machine into its row.
func applyChallengeState(c *entity.Challenge, state challenge.Challenge) {
	c.IsCreated = state.ID != 0
	c.IsActive = state.IsActive
	c.Name = state.Name
	c.Description = state.Description
	c.EntryFee = state.EntryFee
	c.StartTime = state.StartTime
	c.CurrentWeek = state.CurrentWeek
	c.TotalParticipants = state.TotalParticipants
	c.MaxParticipants = state.MaxParticipants
	c.Week1Pool = state.Week1Pool
	c.Week2Pool = state.Week2Pool
	c.Week3Pool = state.Week3Pool
	c.Reserve = state.Reserve
	c.Sequence = state.Sequence
}

func convertParticipantState(p *entity.Participant) challenge.Participant {
	return challenge.Participant{
		Address:         addressFromHex(p.Address),
		IsParticipant:   true,
		Week1Points:     p.Week1Points,
		Week2Points:     p.Week2Points,
		Week3Points:     p.Week3Points,
		TotalPoints:     p.TotalPoints,
		IsEliminated:    p.IsEliminated,
		EliminationWeek: p.EliminationWeek,
		LastTaskTime:    p.LastTaskTime,
	}
}

func convertParticipantEntity(challengeID int64, p challenge.Participant) *entity.Participant {
	return &entity.Participant{
		Base:            entity.Base{ID: uuid.NewString()},
		ChallengeID:     challengeID,
		Address:         p.Address.Hex(),
		Week1Points:     p.Week1Points,
		Week2Points:     p.Week2Points,
		Week3Points:     p.Week3Points,
		TotalPoints:     p.TotalPoints,
		IsEliminated:    p.IsEliminated,
		EliminationWeek: p.EliminationWeek,
		LastTaskTime:    p.LastTaskTime,
	}
}

func convertPayoutKind(kind challenge.TransferKind) entity.PayoutKindType {
	if kind == challenge.PlatformFeeTransfer {
		return entity.PayoutKindPlatformFee
	}

	return entity.PayoutKindReward
}

// convertPayouts returns the payouts owed by a receipt. Zero amounts are
// skipped, there is nothing to transfer.
func convertPayouts(challengeID int64, r *challenge.Receipt) []entity.Payout {
	payouts := []entity.Payout{}
	for _, t := range r.Transfers {
		if t.Amount == 0 {
			continue
		}

		payouts = append(payouts, entity.Payout{
			Base:        entity.Base{ID: uuid.NewString()},
			ChallengeID: challengeID,
			Sequence:    r.Sequence,
			Kind:        convertPayoutKind(t.Kind),
			ToAddress:   t.To.Hex(),
			Amount:      t.Amount,
			Week:        t.Week,
			Rank:        t.Rank,
			Status:      entity.PayoutStatusPending,
		})
	}

	return payouts
}

func convertTransfers(transfers []challenge.Transfer) []model.Transfer {
	result := []model.Transfer{}
	for _, t := range transfers {
		result = append(result, model.Transfer{
			To:     t.To.Hex(),
			Amount: t.Amount,
			Kind:   string(t.Kind),
			Week:   t.Week,
			Rank:   t.Rank,
		})
	}

	return result
}

func convertReceipt(challengeID int64, r *challenge.Receipt) model.Receipt {
	return model.Receipt{
		ChallengeID: challengeID,
		Sequence:    r.Sequence,
		Action:      string(r.Action),
		Deposit:     r.Deposit,
		Transfers:   convertTransfers(r.Transfers),
	}
}

func convertAddresses(addrs []common.Address) []string {
	result := make([]string, 0, len(addrs))
	for _, a := range addrs {
		result = append(result, a.Hex())
	}

	return result
}
