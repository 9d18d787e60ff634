package challenge

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/habitchain/backend/pkg/enum"
)

type ActionType string

var (
	CreateChallengeAction         = enum.New(ActionType("create_challenge"))
	JoinChallengeAction           = enum.New(ActionType("join_challenge"))
	CompleteTaskAction            = enum.New(ActionType("complete_task"))
	WeeklyEliminationAction       = enum.New(ActionType("weekly_elimination"))
	DistributeWeeklyRewardsAction = enum.New(ActionType("distribute_weekly_rewards"))
	EndChallengeAction            = enum.New(ActionType("end_challenge"))
)

// Action is an operation of the challenge. Every action checks all of its
// preconditions before it touches the machine.
type Action interface {
	Type() ActionType
	apply(m *Machine, call Call, r *Receipt) error
}

type CreateChallenge struct {
	EntryFee        uint64 `structs:"entry_fee" mapstructure:"entry_fee"`
	StartTime       uint64 `structs:"start_time" mapstructure:"start_time"`
	MaxParticipants uint64 `structs:"max_participants" mapstructure:"max_participants"`
	Name            string `structs:"name" mapstructure:"name"`
	Description     string `structs:"description" mapstructure:"description"`
}

func (a *CreateChallenge) Type() ActionType { return CreateChallengeAction }

func (a *CreateChallenge) apply(m *Machine, call Call, r *Receipt) error {
	if !m.isCreator(call.Caller) {
		return ErrUnauthorized
	}

	if m.challenge.ID != 0 {
		return ErrAlreadyCreated
	}

	m.challenge = Challenge{
		ID:              m.deployment.InstanceID,
		Creator:         m.deployment.Creator,
		EntryFee:        a.EntryFee,
		StartTime:       a.StartTime,
		CurrentWeek:     1,
		MaxParticipants: a.MaxParticipants,
		IsActive:        true,
		Name:            a.Name,
		Description:     a.Description,
		Sequence:        m.challenge.Sequence,
	}

	return nil
}

type JoinChallenge struct{}

func (a *JoinChallenge) Type() ActionType { return JoinChallengeAction }

func (a *JoinChallenge) apply(m *Machine, call Call, r *Receipt) error {
	c := &m.challenge
	if !c.IsActive {
		return ErrChallengeInactive
	}

	if call.Payment != c.EntryFee {
		return ErrWrongPaymentAmount
	}

	if c.TotalParticipants >= c.MaxParticipants {
		return ErrChallengeFull
	}

	if p, ok := m.participants[call.Caller]; ok && p.IsParticipant {
		return ErrAlreadyJoined
	}

	credit := percentOf(call.Payment, JoinPoolPercent)
	pool, err := add(c.Week1Pool, credit)
	if err != nil {
		return err
	}

	reserve, err := add(c.Reserve, call.Payment-credit)
	if err != nil {
		return err
	}

	c.Week1Pool = pool
	c.Reserve = reserve
	c.TotalParticipants++
	m.participants[call.Caller] = &Participant{Address: call.Caller, IsParticipant: true}

	r.Deposit = call.Payment
	r.Touched = append(r.Touched, call.Caller)
	return nil
}

type CompleteTask struct {
	TaskID       uint64 `structs:"task_id" mapstructure:"task_id"`
	PointsEarned uint64 `structs:"points_earned" mapstructure:"points_earned"`
	Week         uint64 `structs:"week" mapstructure:"week"`
}

func (a *CompleteTask) Type() ActionType { return CompleteTaskAction }

func (a *CompleteTask) apply(m *Machine, call Call, r *Receipt) error {
	p, ok := m.participants[call.Caller]
	if !ok || !p.IsParticipant {
		return ErrNotParticipant
	}

	if p.IsEliminated {
		return ErrAlreadyEliminated
	}

	if !validWeek(a.Week) {
		return ErrInvalidWeek
	}

	if !m.challenge.IsActive {
		return ErrChallengeInactive
	}

	if a.Week > m.challenge.CurrentWeek {
		return ErrWeekNotYetOpen
	}

	weekly, err := add(p.Points(a.Week), a.PointsEarned)
	if err != nil {
		return err
	}

	total, err := add(p.TotalPoints, a.PointsEarned)
	if err != nil {
		return err
	}

	*p.points(a.Week) = weekly
	p.TotalPoints = total
	p.LastTaskTime = call.Time

	r.Touched = append(r.Touched, call.Caller)
	return nil
}

type WeeklyElimination struct {
	Week        uint64         `structs:"week" mapstructure:"week"`
	Participant common.Address `structs:"participant" mapstructure:"participant"`
}

func (a *WeeklyElimination) Type() ActionType { return WeeklyEliminationAction }

func (a *WeeklyElimination) apply(m *Machine, call Call, r *Receipt) error {
	if !m.isCreator(call.Caller) {
		return ErrUnauthorized
	}

	c := &m.challenge
	if !c.IsActive {
		return ErrChallengeInactive
	}

	if !validWeek(a.Week) {
		return ErrInvalidWeek
	}

	if a.Week > c.CurrentWeek {
		return ErrWeekNotYetOpen
	}

	p, ok := m.participants[a.Participant]
	if !ok || !p.IsParticipant {
		return ErrNotParticipant
	}

	if p.IsEliminated {
		return ErrAlreadyEliminated
	}

	// The final week has no successor pool, its penalty stays in the reserve.
	penalty := percentOf(c.EntryFee, PenaltyPercent)
	next := c.pool(a.Week + 1)
	var nextValue uint64
	if next != nil {
		var err error
		nextValue, err = add(*next, penalty)
		if err != nil {
			return err
		}

		if c.Reserve < penalty {
			return ErrOverflow
		}
	}

	p.IsEliminated = true
	p.EliminationWeek = a.Week
	if next != nil {
		*next = nextValue
		c.Reserve -= penalty
	}

	if a.Week == c.CurrentWeek && c.CurrentWeek < NumWeeks {
		c.CurrentWeek++
	}

	r.Touched = append(r.Touched, a.Participant)
	return nil
}

type DistributeWeeklyRewards struct {
	Week    uint64         `structs:"week" mapstructure:"week"`
	Winner1 common.Address `structs:"winner1" mapstructure:"winner1"`
	Winner2 common.Address `structs:"winner2" mapstructure:"winner2"`
	Winner3 common.Address `structs:"winner3" mapstructure:"winner3"`
}

func (a *DistributeWeeklyRewards) Type() ActionType { return DistributeWeeklyRewardsAction }

func (a *DistributeWeeklyRewards) Winners() [3]common.Address {
	return [3]common.Address{a.Winner1, a.Winner2, a.Winner3}
}

func (a *DistributeWeeklyRewards) apply(m *Machine, call Call, r *Receipt) error {
	if !m.isCreator(call.Caller) {
		return ErrUnauthorized
	}

	c := &m.challenge
	if !c.IsActive {
		return ErrChallengeInactive
	}

	if !validWeek(a.Week) {
		return ErrInvalidWeek
	}

	pool := c.pool(a.Week)
	if *pool == 0 {
		return ErrEmptyPool
	}

	winners := a.Winners()
	for _, w := range winners {
		if !m.eligible(w) {
			return ErrWinnerNotEligible
		}
	}

	for i, w := range winners {
		r.Transfers = append(r.Transfers, Transfer{
			To:     w,
			Amount: percentOf(*pool, RewardPercents[i]),
			Kind:   RewardTransfer,
			Week:   a.Week,
			Rank:   i + 1,
		})
	}

	*pool = 0
	return nil
}

type EndChallenge struct{}

func (a *EndChallenge) Type() ActionType { return EndChallengeAction }

func (a *EndChallenge) apply(m *Machine, call Call, r *Receipt) error {
	if !m.isCreator(call.Caller) {
		return ErrUnauthorized
	}

	c := &m.challenge
	if !c.IsActive {
		if c.ID == 0 {
			return ErrChallengeInactive
		}

		return ErrAlreadyEnded
	}

	c.IsActive = false

	sink := m.deployment.FeeSink
	if sink != (common.Address{}) && c.Reserve > 0 {
		r.Transfers = append(r.Transfers, Transfer{
			To:     sink,
			Amount: c.Reserve,
			Kind:   PlatformFeeTransfer,
		})
		c.Reserve = 0
	}

	return nil
}
