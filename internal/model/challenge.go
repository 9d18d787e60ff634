package model

// SignedCall authenticates a mutating rpc call. Signature is a personal_sign
// signature of "<method>:<challenge_id>:<nonce>:<json request>" by Caller.
type SignedCall struct {
	Caller    string `json:"caller"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type DeployChallengeRequest struct {
	// Creator defaults to the operator address.
	Creator string `json:"creator"`

	// FeeSink defaults to the configured fee sink address.
	FeeSink string `json:"fee_sink"`
}

type DeployChallengeResponse struct {
	ID int64 `json:"id"`
}

type CreateChallengeRequest struct {
	ChallengeID     int64  `json:"challenge_id"`
	EntryFee        uint64 `json:"entry_fee"`
	StartTime       uint64 `json:"start_time"`
	MaxParticipants uint64 `json:"max_participants"`
	Name            string `json:"name"`
	Description     string `json:"description"`
}

type CreateChallengeResponse struct {
	Receipt Receipt `json:"receipt"`
}

type JoinChallengeRequest struct {
	ChallengeID int64 `json:"challenge_id"`

	// Deposit is the tx hash of a confirmed, unused deposit of the caller. Its
	// amount is the payment attached to the join.
	Deposit string `json:"deposit"`
}

type JoinChallengeResponse struct {
	Receipt Receipt `json:"receipt"`
}

type CompleteTaskRequest struct {
	ChallengeID  int64  `json:"challenge_id"`
	TaskID       uint64 `json:"task_id"`
	PointsEarned uint64 `json:"points_earned"`
	Week         uint64 `json:"week"`
}

type CompleteTaskResponse struct {
	Receipt Receipt `json:"receipt"`
}

type WeeklyEliminationRequest struct {
	ChallengeID int64  `json:"challenge_id"`
	Week        uint64 `json:"week"`
	Participant string `json:"participant"`
}

type WeeklyEliminationResponse struct {
	Receipt Receipt `json:"receipt"`
}

type DistributeWeeklyRewardsRequest struct {
	ChallengeID int64  `json:"challenge_id"`
	Week        uint64 `json:"week"`
	Winner1     string `json:"winner1"`
	Winner2     string `json:"winner2"`
	Winner3     string `json:"winner3"`
}

type DistributeWeeklyRewardsResponse struct {
	Receipt Receipt `json:"receipt"`
}

type EndChallengeRequest struct {
	ChallengeID int64 `json:"challenge_id"`
}

type EndChallengeResponse struct {
	Receipt Receipt `json:"receipt"`
}

type GetChallengeInfoRequest struct {
	ChallengeID int64 `json:"challenge_id"`
}

type GetChallengeInfoResponse struct {
	Challenge Challenge `json:"challenge"`
}

type GetParticipantStateRequest struct {
	ChallengeID int64  `json:"challenge_id"`
	Address     string `json:"address"`
}

type GetParticipantStateResponse struct {
	Participant Participant `json:"participant"`

	// Rank is the position in the leaderboard of the current week, zero if the
	// address is not ranked.
	Rank uint64 `json:"rank,omitempty"`
}

type GetWeeklyRankingRequest struct {
	ChallengeID int64  `json:"challenge_id"`
	Week        uint64 `json:"week"`
	Offset      int    `json:"offset"`
	Limit       int    `json:"limit"`
}

type GetWeeklyRankingResponse struct {
	Ranking []RankEntry `json:"ranking"`
}

type GetChallengesRequest struct {
	Creator    string `json:"creator"`
	ActiveOnly bool   `json:"active_only"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

type GetChallengesResponse struct {
	Challenges []Challenge `json:"challenges"`
}

type GetPayoutsRequest struct {
	ChallengeID int64  `json:"challenge_id"`
	Address     string `json:"address"`
}

type GetPayoutsResponse struct {
	Payouts []Payout `json:"payouts"`
}

type RefundDepositRequest struct {
	ChallengeID int64  `json:"challenge_id"`
	Deposit     string `json:"deposit"`
}

type RefundDepositResponse struct {
	Payout Payout `json:"payout"`
}

type GetDepositsRequest struct {
	Address string `json:"address"`
}

type GetDepositsResponse struct {
	Deposits []Deposit `json:"deposits"`
}

type GetNonceRequest struct {
	Address string `json:"address"`
}

type GetNonceResponse struct {
	Nonce uint64 `json:"nonce"`
}

type AuditChallengeRequest struct {
	ChallengeID int64 `json:"challenge_id"`
}

type AuditChallengeResponse struct {
	Transactions int    `json:"transactions"`
	Consistent   bool   `json:"consistent"`
	Diff         string `json:"diff,omitempty"`
}
