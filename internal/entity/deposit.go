package entity

import (
	"time"

	"github.com/habitchain/backend/pkg/enum"
)

type DepositStatusType string

var (
	DepositStatusConfirmed = enum.New(DepositStatusType("confirmed"))
	DepositStatusUsed      = enum.New(DepositStatusType("used"))
	DepositStatusRefunded  = enum.New(DepositStatusType("refunded"))
)

// Deposit is a transfer into custody reported by the custody service. A
// confirmed deposit funds at most one join, or is refunded to its sender.
type Deposit struct {
	TxHash    string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChallengeID int64     `gorm:"index"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"`
	FromAddress string    `gorm:"index"`
	Amount      uint64

	Status DepositStatusType `gorm:"index"`

	// Sequence is the ledger transaction which used the deposit.
	Sequence uint64
}
