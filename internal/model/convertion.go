package model

import (
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/idutil"
)

func ConvertChallenge(c *entity.Challenge) Challenge {
	if c == nil {
		return Challenge{}
	}

	return Challenge{
		ID:                c.ID,
		Creator:           c.Creator,
		FeeSink:           c.FeeSink,
		DeployedAt:        idutil.Time(c.ID),
		IsCreated:         c.IsCreated,
		IsActive:          c.IsActive,
		Name:              c.Name,
		Description:       c.Description,
		EntryFee:          c.EntryFee,
		StartTime:         c.StartTime,
		CurrentWeek:       c.CurrentWeek,
		TotalParticipants: c.TotalParticipants,
		MaxParticipants:   c.MaxParticipants,
		Week1Pool:         c.Week1Pool,
		Week2Pool:         c.Week2Pool,
		Week3Pool:         c.Week3Pool,
		Reserve:           c.Reserve,
		Sequence:          c.Sequence,
	}
}

func ConvertParticipant(p *entity.Participant) Participant {
	if p == nil {
		return Participant{}
	}

	return Participant{
		Address:         p.Address,
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

func ConvertPayout(p *entity.Payout) Payout {
	if p == nil {
		return Payout{}
	}

	return Payout{
		ID:          p.ID,
		ChallengeID: p.ChallengeID,
		Sequence:    p.Sequence,
		Kind:        string(p.Kind),
		ToAddress:   p.ToAddress,
		Amount:      p.Amount,
		Week:        p.Week,
		Rank:        p.Rank,
		Status:      string(p.Status),
		TxHash:      p.TxHash,
		CreatedAt:   p.CreatedAt,
	}
}

func ConvertDeposit(d *entity.Deposit) Deposit {
	if d == nil {
		return Deposit{}
	}

	return Deposit{
		TxHash:      d.TxHash,
		ChallengeID: d.ChallengeID,
		FromAddress: d.FromAddress,
		Amount:      d.Amount,
		Status:      string(d.Status),
		Sequence:    d.Sequence,
		CreatedAt:   d.CreatedAt,
	}
}
