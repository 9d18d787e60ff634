package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newParticipant(address string, week1 uint64, lastTaskTime uint64) *entity.Participant {
	return &entity.Participant{
		Base:         entity.Base{ID: uuid.NewString()},
		ChallengeID:  1,
		Address:      address,
		Week1Points:  week1,
		TotalPoints:  week1,
		LastTaskTime: lastTaskTime,
	}
}

func Test_participantRepository_Upsert(t *testing.T) {
	ctx := testutil.NewMockContext()
	require.NoError(t, NewChallengeRepository().Create(ctx, &entity.Challenge{SnowFlakeBase: entity.SnowFlakeBase{ID: 1}}))
	repo := NewParticipantRepository()

	p := newParticipant("0xa", 0, 0)
	require.NoError(t, repo.Upsert(ctx, p))

	// A second upsert with another row id updates the same participant.
	updated := newParticipant("0xa", 5, 100)
	updated.IsEliminated = true
	updated.EliminationWeek = 1
	require.NoError(t, repo.Upsert(ctx, updated))

	got, err := repo.Get(ctx, 1, "0xa")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, uint64(5), got.Week1Points)
	require.True(t, got.IsEliminated)

	all, err := repo.GetByChallengeID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func Test_participantRepository_GetWeeklyRanking(t *testing.T) {
	ctx := testutil.NewMockContext()
	require.NoError(t, NewChallengeRepository().Create(ctx, &entity.Challenge{SnowFlakeBase: entity.SnowFlakeBase{ID: 1}}))
	repo := NewParticipantRepository()

	require.NoError(t, repo.Upsert(ctx, newParticipant("0xa", 10, 300)))
	require.NoError(t, repo.Upsert(ctx, newParticipant("0xb", 10, 200)))
	require.NoError(t, repo.Upsert(ctx, newParticipant("0xc", 30, 500)))
	require.NoError(t, repo.Upsert(ctx, newParticipant("0xd", 5, 100)))

	eliminated := newParticipant("0xe", 50, 100)
	eliminated.IsEliminated = true
	require.NoError(t, repo.Upsert(ctx, eliminated))

	ranking, err := repo.GetWeeklyRanking(ctx, 1, 1, 0, 0)
	require.NoError(t, err)

	var addresses []string
	for _, p := range ranking {
		addresses = append(addresses, p.Address)
	}

	// Equal points are ordered by the earliest last task.
	require.Equal(t, []string{"0xc", "0xb", "0xa", "0xd"}, addresses)

	page, err := repo.GetWeeklyRanking(ctx, 1, 1, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "0xb", page[0].Address)

	_, err = repo.GetWeeklyRanking(ctx, 1, 4, 0, 0)
	require.Error(t, err)
}
