package repository

import (
	"context"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/xcontext"
)

type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx *entity.LedgerTransaction) error
	GetByChallengeID(ctx context.Context, challengeID int64) ([]entity.LedgerTransaction, error)
}

type ledgerTransactionRepository struct{}

func NewLedgerTransactionRepository() *ledgerTransactionRepository {
	return &ledgerTransactionRepository{}
}

func (r *ledgerTransactionRepository) Create(ctx context.Context, tx *entity.LedgerTransaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *ledgerTransactionRepository) GetByChallengeID(
	ctx context.Context, challengeID int64,
) ([]entity.LedgerTransaction, error) {
	var result []entity.LedgerTransaction
	err := xcontext.DB(ctx).Order("sequence ASC").Find(&result, "challenge_id=?", challengeID).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
