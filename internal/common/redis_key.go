package common

import (
	"fmt"
	"time"
)

const ChallengeInfoCacheTTL = 10 * time.Minute

func RedisKeyWeeklyLeaderboard(challengeID int64, week uint64) string {
	return fmt.Sprintf("leaderboard:%d:%d", challengeID, week)
}

func RedisKeyChallengeInfo(challengeID int64) string {
	return fmt.Sprintf("challenge:%d", challengeID)
}
