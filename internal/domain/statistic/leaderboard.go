package statistic

import (
	"context"

	"github.com/habitchain/backend/internal/common"
	"github.com/habitchain/backend/internal/model"
	"github.com/habitchain/backend/internal/repository"
	"github.com/habitchain/backend/pkg/errorx"
	"github.com/habitchain/backend/pkg/xcontext"
	"github.com/habitchain/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

// Leaderboard is a redis view of the weekly points of participants still in a
// challenge. The database stays the source of truth: a missing key is loaded
// from it on first read.
type Leaderboard interface {
	GetWeeklyRanking(
		ctx context.Context,
		challengeID int64,
		week uint64,
		offset, limit int,
	) ([]model.RankEntry, error)

	GetRank(ctx context.Context, challengeID int64, week uint64, address string) (uint64, error)

	IncreasePoints(ctx context.Context, challengeID int64, week uint64, address string, points uint64) error

	// RemoveParticipant drops an eliminated participant from every week.
	RemoveParticipant(ctx context.Context, challengeID int64, address string) error
}

type leaderboard struct {
	participantRepo repository.ParticipantRepository
	redisClient     xredis.Client
}

func New(
	participantRepo repository.ParticipantRepository,
	redisClient xredis.Client,
) *leaderboard {
	return &leaderboard{participantRepo: participantRepo, redisClient: redisClient}
}

func (l *leaderboard) GetWeeklyRanking(
	ctx context.Context,
	challengeID int64,
	week uint64,
	offset, limit int,
) ([]model.RankEntry, error) {
	key := common.RedisKeyWeeklyLeaderboard(challengeID, week)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, challengeID, week); err != nil {
			return nil, err
		}
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	ranking := []model.RankEntry{}
	for i, z := range results {
		ranking = append(ranking, model.RankEntry{
			Rank:    offset + i + 1,
			Address: z.Member.(string),
			Points:  uint64(z.Score),
		})
	}

	return ranking, nil
}

func (l *leaderboard) GetRank(ctx context.Context, challengeID int64, week uint64, address string) (uint64, error) {
	key := common.RedisKeyWeeklyLeaderboard(challengeID, week)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return 0, errorx.Unknown
	}

	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, challengeID, week); err != nil {
			return 0, err
		}
	}

	rank, err := l.redisClient.ZRevRank(ctx, key, address)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		return 0, nil
	}

	return rank + 1, nil
}

func (l *leaderboard) IncreasePoints(
	ctx context.Context, challengeID int64, week uint64, address string, points uint64,
) error {
	key := common.RedisKeyWeeklyLeaderboard(challengeID, week)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	// If the key didn't exist in redis, no need to update.
	if !ok {
		return nil
	}

	if err := l.redisClient.ZIncrBy(ctx, key, int64(points), address); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) RemoveParticipant(ctx context.Context, challengeID int64, address string) error {
	for week := uint64(1); week <= 3; week++ {
		err := l.redisClient.ZRem(ctx, common.RedisKeyWeeklyLeaderboard(challengeID, week), address)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call ZRem redis: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func (l *leaderboard) loadLeaderboardFromDB(ctx context.Context, challengeID int64, week uint64) error {
	participants, err := l.participantRepo.GetWeeklyRanking(ctx, challengeID, week, 0, 0)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load ranking from database: %v", err)
		return errorx.Unknown
	}

	if len(participants) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(participants))
	for _, p := range participants {
		var points uint64
		switch week {
		case 1:
			points = p.Week1Points
		case 2:
			points = p.Week2Points
		case 3:
			points = p.Week3Points
		}

		members = append(members, redis.Z{Member: p.Address, Score: float64(points)})
	}

	key := common.RedisKeyWeeklyLeaderboard(challengeID, week)
	if err := l.redisClient.ZAdd(ctx, key, members...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
		return errorx.Unknown
	}

	return nil
}
