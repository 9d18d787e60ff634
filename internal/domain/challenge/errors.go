package challenge

import "github.com/habitchain/backend/pkg/errorx"

var (
	ErrUnauthorized       = errorx.New(errorx.Unauthorized, "Caller is not the challenge creator")
	ErrAlreadyCreated     = errorx.New(errorx.AlreadyCreated, "Challenge has already been created")
	ErrAlreadyEnded       = errorx.New(errorx.AlreadyEnded, "Challenge has already ended")
	ErrAlreadyJoined      = errorx.New(errorx.AlreadyJoined, "Already participating in this challenge")
	ErrAlreadyEliminated  = errorx.New(errorx.AlreadyEliminated, "Participant has already been eliminated")
	ErrChallengeInactive  = errorx.New(errorx.ChallengeInactive, "Challenge is not active")
	ErrWrongPaymentAmount = errorx.New(errorx.WrongPaymentAmount, "Payment must equal the entry fee")
	ErrChallengeFull      = errorx.New(errorx.ChallengeFull, "Challenge is full")
	ErrNotParticipant     = errorx.New(errorx.NotParticipant, "Not participating in this challenge")
	ErrWinnerNotEligible  = errorx.New(errorx.WinnerNotEligible, "Winner is not an active participant")
	ErrInvalidWeek        = errorx.New(errorx.InvalidWeek, "Week must be between 1 and 3")
	ErrWeekNotYetOpen     = errorx.New(errorx.WeekNotYetOpen, "Week has not started yet")
	ErrEmptyPool          = errorx.New(errorx.EmptyPool, "Week pool is empty")
	ErrOverflow           = errorx.New(errorx.Overflow, "Arithmetic overflow")
)
