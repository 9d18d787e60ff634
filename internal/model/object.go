package model

import "time"

type Challenge struct {
	ID                int64     `json:"id"`
	Creator           string    `json:"creator"`
	FeeSink           string    `json:"fee_sink,omitempty"`
	DeployedAt        time.Time `json:"deployed_at"`
	IsCreated         bool      `json:"is_created"`
	IsActive          bool      `json:"is_active"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	EntryFee          uint64    `json:"entry_fee"`
	StartTime         uint64    `json:"start_time"`
	CurrentWeek       uint64    `json:"current_week"`
	TotalParticipants uint64    `json:"total_participants"`
	MaxParticipants   uint64    `json:"max_participants"`
	Week1Pool         uint64    `json:"week1_pool"`
	Week2Pool         uint64    `json:"week2_pool"`
	Week3Pool         uint64    `json:"week3_pool"`
	Reserve           uint64    `json:"reserve"`
	Sequence          uint64    `json:"sequence"`
}

type Participant struct {
	Address         string `json:"address"`
	IsParticipant   bool   `json:"is_participant"`
	Week1Points     uint64 `json:"week1_points"`
	Week2Points     uint64 `json:"week2_points"`
	Week3Points     uint64 `json:"week3_points"`
	TotalPoints     uint64 `json:"total_points"`
	IsEliminated    bool   `json:"is_eliminated"`
	EliminationWeek uint64 `json:"elimination_week"`
	LastTaskTime    uint64 `json:"last_task_time"`
}

type RankEntry struct {
	Rank    int    `json:"rank"`
	Address string `json:"address"`
	Points  uint64 `json:"points"`
}

type Transfer struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Kind   string `json:"kind"`
	Week   uint64 `json:"week,omitempty"`
	Rank   int    `json:"rank,omitempty"`
}

type Payout struct {
	ID          string    `json:"id"`
	ChallengeID int64     `json:"challenge_id"`
	Sequence    uint64    `json:"sequence"`
	Kind        string    `json:"kind"`
	ToAddress   string    `json:"to_address"`
	Amount      uint64    `json:"amount"`
	Week        uint64    `json:"week"`
	Rank        int       `json:"rank"`
	Status      string    `json:"status"`
	TxHash      string    `json:"tx_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

type Deposit struct {
	TxHash      string    `json:"tx_hash"`
	ChallengeID int64     `json:"challenge_id"`
	FromAddress string    `json:"from_address"`
	Amount      uint64    `json:"amount"`
	Status      string    `json:"status"`
	Sequence    uint64    `json:"sequence,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Receipt is returned by every accepted operation.
type Receipt struct {
	ChallengeID int64      `json:"challenge_id"`
	Sequence    uint64     `json:"sequence"`
	Action      string     `json:"action"`
	Deposit     uint64     `json:"deposit,omitempty"`
	Transfers   []Transfer `json:"transfers,omitempty"`
}
