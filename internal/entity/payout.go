package entity

import "github.com/habitchain/backend/pkg/enum"

type PayoutStatusType string

var (
	PayoutStatusPending    = enum.New(PayoutStatusType("pending"))
	PayoutStatusDispatched = enum.New(PayoutStatusType("dispatched"))
	PayoutStatusCompleted  = enum.New(PayoutStatusType("completed"))
	PayoutStatusFailed     = enum.New(PayoutStatusType("failed"))
)

type PayoutKindType string

var (
	PayoutKindReward      = enum.New(PayoutKindType("reward"))
	PayoutKindPlatformFee = enum.New(PayoutKindType("platform_fee"))
	PayoutKindRefund      = enum.New(PayoutKindType("refund"))
)

type Payout struct {
	Base

	ChallengeID int64     `gorm:"index"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"`
	Sequence    uint64

	Kind      PayoutKindType
	ToAddress string `gorm:"index"`
	Amount    uint64
	Week      uint64
	Rank      int

	Status PayoutStatusType `gorm:"index"`
	TxHash string
}
