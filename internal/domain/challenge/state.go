package challenge

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	// NumWeeks is the length of a challenge in weeks.
	NumWeeks = 3

	// JoinPoolPercent of every entry fee goes to the first week's pool. The rest
	// is kept in the reserve.
	JoinPoolPercent = 70

	// PenaltyPercent of the entry fee moves from the reserve to the next week's
	// pool when a participant is eliminated.
	PenaltyPercent = 30
)

// RewardPercents are the shares of a week pool paid to the first, second and
// third winner. The truncated remainder stays in custody.
var RewardPercents = [3]uint64{40, 30, 30}

// Deployment is fixed when an instance is deployed and never changes.
type Deployment struct {
	InstanceID uint64
	Creator    common.Address

	// FeeSink receives the reserve when the challenge ends. The zero address
	// keeps the reserve in custody.
	FeeSink common.Address
}

// Challenge is the global state of one instance. ID is zero until
// CreateChallenge succeeds.
type Challenge struct {
	ID                uint64
	Creator           common.Address
	EntryFee          uint64
	StartTime         uint64
	CurrentWeek       uint64
	TotalParticipants uint64
	MaxParticipants   uint64
	IsActive          bool

	Week1Pool uint64
	Week2Pool uint64
	Week3Pool uint64

	Name        string
	Description string

	// Reserve holds the join-time deduction not credited to week 1. Elimination
	// penalties are paid from it.
	Reserve uint64

	// Sequence counts the operations applied to this instance.
	Sequence uint64
}

func (c *Challenge) pool(week uint64) *uint64 {
	switch week {
	case 1:
		return &c.Week1Pool
	case 2:
		return &c.Week2Pool
	case 3:
		return &c.Week3Pool
	}

	return nil
}

// Pool returns the pool of the given week, or zero for an invalid week.
func (c Challenge) Pool(week uint64) uint64 {
	if p := c.pool(week); p != nil {
		return *p
	}

	return 0
}

// Participant is the local state of one address. A zero value with
// IsParticipant=false is returned for addresses that never joined.
type Participant struct {
	Address       common.Address
	IsParticipant bool

	Week1Points uint64
	Week2Points uint64
	Week3Points uint64
	TotalPoints uint64

	IsEliminated    bool
	EliminationWeek uint64
	LastTaskTime    uint64
}

func (p *Participant) points(week uint64) *uint64 {
	switch week {
	case 1:
		return &p.Week1Points
	case 2:
		return &p.Week2Points
	case 3:
		return &p.Week3Points
	}

	return nil
}

// Points returns the points earned in the given week.
func (p Participant) Points(week uint64) uint64 {
	if v := p.points(week); v != nil {
		return *v
	}

	return 0
}

func (p Participant) eligible() bool {
	return p.IsParticipant && !p.IsEliminated
}

// Call carries what the execution harness knows about an operation: who sent
// it, how much was attached and the logical time.
type Call struct {
	Caller  common.Address
	Payment uint64
	Time    uint64
}

type TransferKind string

const (
	RewardTransfer      TransferKind = "reward"
	PlatformFeeTransfer TransferKind = "platform_fee"
)

// Transfer is an outbound payment the harness must issue together with the
// state change.
type Transfer struct {
	To     common.Address
	Amount uint64
	Kind   TransferKind

	// Week and Rank are set for rewards.
	Week uint64
	Rank int
}

// Receipt describes the effects of an accepted operation.
type Receipt struct {
	Sequence  uint64
	Action    ActionType
	Deposit   uint64
	Transfers []Transfer

	// Touched lists the participants whose state changed, in address order.
	Touched []common.Address
}
