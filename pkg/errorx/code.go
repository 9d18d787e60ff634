package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Account codes
	InvalidNonce Code = 200001

	// Deposit codes
	InvalidDeposit     Code = 300001
	DepositAlreadyUsed Code = 300002

	// Challenge codes
	Unauthorized       Code = 500001
	AlreadyCreated     Code = 500002
	AlreadyEnded       Code = 500003
	AlreadyJoined      Code = 500004
	AlreadyEliminated  Code = 500005
	ChallengeInactive  Code = 500006
	WrongPaymentAmount Code = 500007
	ChallengeFull      Code = 500008
	NotParticipant     Code = 500009
	WinnerNotEligible  Code = 500010
	InvalidWeek        Code = 500011
	WeekNotYetOpen     Code = 500012
	EmptyPool          Code = 500013
	Overflow           Code = 500014
)
