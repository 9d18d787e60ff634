package repository

import (
	"errors"
	"testing"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_payoutRepository(t *testing.T) {
	ctx := testutil.NewMockContext()
	require.NoError(t, NewChallengeRepository().Create(ctx, &entity.Challenge{SnowFlakeBase: entity.SnowFlakeBase{ID: 1}}))
	repo := NewPayoutRepository()

	require.NoError(t, repo.CreateMany(ctx, nil))
	require.NoError(t, repo.CreateMany(ctx, []entity.Payout{
		{
			Base: entity.Base{ID: "p1"}, ChallengeID: 1, Sequence: 5, Kind: entity.PayoutKindReward,
			ToAddress: "0xa", Amount: 40, Week: 1, Rank: 1, Status: entity.PayoutStatusPending,
		},
		{
			Base: entity.Base{ID: "p2"}, ChallengeID: 1, Sequence: 5, Kind: entity.PayoutKindReward,
			ToAddress: "0xb", Amount: 30, Week: 1, Rank: 2, Status: entity.PayoutStatusPending,
		},
	}))

	pending, err := repo.GetByStatus(ctx, entity.PayoutStatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, repo.UpdateStatus(ctx, "p1", entity.PayoutStatusPending, entity.PayoutStatusDispatched, ""))
	err = repo.UpdateStatus(ctx, "p1", entity.PayoutStatusPending, entity.PayoutStatusDispatched, "")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.UpdateStatus(ctx, "p1", entity.PayoutStatusDispatched, entity.PayoutStatusCompleted, "0xhash"))
	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, entity.PayoutStatusCompleted, got.Status)
	require.Equal(t, "0xhash", got.TxHash)

	byChallenge, err := repo.GetByChallengeID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byChallenge, 2)
	require.Equal(t, 1, byChallenge[0].Rank)

	byAddress, err := repo.GetByAddress(ctx, "0xb")
	require.NoError(t, err)
	require.Len(t, byAddress, 1)
}
