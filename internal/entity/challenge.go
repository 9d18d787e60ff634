package entity

import "time"

// Challenge is one deployed challenge instance. ID is the instance id and is
// assigned at deployment, IsCreated turns true once the creator configures it.
type Challenge struct {
	SnowFlakeBase
	CreatedAt time.Time

	Creator string `gorm:"index"`
	FeeSink string

	IsCreated         bool
	IsActive          bool `gorm:"index"`
	Name              string
	Description       string
	EntryFee          uint64
	StartTime         uint64
	CurrentWeek       uint64
	TotalParticipants uint64
	MaxParticipants   uint64

	Week1Pool uint64
	Week2Pool uint64
	Week3Pool uint64
	Reserve   uint64

	Sequence uint64
}

type Participant struct {
	Base

	ChallengeID int64     `gorm:"index:idx_participant_challenge_address,unique"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"`
	Address     string    `gorm:"index:idx_participant_challenge_address,unique"`

	Week1Points uint64
	Week2Points uint64
	Week3Points uint64
	TotalPoints uint64

	IsEliminated    bool
	EliminationWeek uint64
	LastTaskTime    uint64
}
