package repository

import (
	"testing"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_ledgerTransactionRepository(t *testing.T) {
	ctx := testutil.NewMockContext()
	require.NoError(t, NewChallengeRepository().Create(ctx, &entity.Challenge{SnowFlakeBase: entity.SnowFlakeBase{ID: 1}}))
	repo := NewLedgerTransactionRepository()

	for _, seq := range []uint64{2, 1, 3} {
		require.NoError(t, repo.Create(ctx, &entity.LedgerTransaction{
			ChallengeID: 1,
			Sequence:    seq,
			Action:      "join_challenge",
			Caller:      "0xa",
			Payload:     entity.Map{"week": "1"},
			Touched:     entity.Array[string]{"0xa"},
		}))
	}

	// Sequence is unique per challenge.
	require.Error(t, repo.Create(ctx, &entity.LedgerTransaction{ChallengeID: 1, Sequence: 1}))

	txs, err := repo.GetByChallengeID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i, tx := range txs {
		require.Equal(t, uint64(i+1), tx.Sequence)
	}

	require.Equal(t, "1", txs[0].Payload["week"])
	require.Equal(t, entity.Array[string]{"0xa"}, txs[0].Touched)
}
