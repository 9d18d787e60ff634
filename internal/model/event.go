package model

// ChallengeEvent is published after every accepted operation.
type ChallengeEvent struct {
	ChallengeID int64          `json:"challenge_id"`
	Sequence    uint64         `json:"sequence"`
	Action      string         `json:"action"`
	Caller      string         `json:"caller"`
	Payment     uint64         `json:"payment"`
	Deposit     string         `json:"deposit,omitempty"`
	Time        uint64         `json:"time"`
	Payload     map[string]any `json:"payload"`
	Transfers   []Transfer     `json:"transfers,omitempty"`
	Touched     []string       `json:"touched,omitempty"`
}

// DepositMessage is sent by the custody service once a transfer into custody
// is final.
type DepositMessage struct {
	TxHash      string `json:"tx_hash"`
	ChallengeID int64  `json:"challenge_id"`
	FromAddress string `json:"from_address"`
	Amount      uint64 `json:"amount"`
}

// PayoutMessage asks the settlement worker to transfer funds.
type PayoutMessage struct {
	PayoutID    string `json:"payout_id"`
	ChallengeID int64  `json:"challenge_id"`
	Kind        string `json:"kind"`
	ToAddress   string `json:"to_address"`
	Amount      uint64 `json:"amount"`
}

// PayoutResultMessage is the settlement worker's answer to a PayoutMessage.
type PayoutResultMessage struct {
	PayoutID string `json:"payout_id"`
	Success  bool   `json:"success"`
	TxHash   string `json:"tx_hash"`
	Reason   string `json:"reason"`
}
