package entity

import "time"

// LedgerTransaction is an accepted operation. Replaying the transactions of a
// challenge in sequence order rebuilds its state.
type LedgerTransaction struct {
	ChallengeID int64     `gorm:"primaryKey"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"`
	Sequence    uint64    `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt   time.Time

	Action  string
	Caller  string
	Payment uint64
	Deposit string
	Time    uint64
	Payload Map
	Touched Array[string]
}
