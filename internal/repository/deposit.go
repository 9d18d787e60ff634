package repository

import (
	"context"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepositRepository interface {
	// Create ignores a deposit whose tx hash is already known.
	Create(ctx context.Context, deposit *entity.Deposit) error
	Get(ctx context.Context, txHash string) (*entity.Deposit, error)
	GetByAddress(ctx context.Context, address string) ([]entity.Deposit, error)
	UpdateStatus(ctx context.Context, txHash string, from, to entity.DepositStatusType, sequence uint64) error
}

type depositRepository struct{}

func NewDepositRepository() *depositRepository {
	return &depositRepository{}
}

func (r *depositRepository) Create(ctx context.Context, deposit *entity.Deposit) error {
	return xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(deposit).Error
}

func (r *depositRepository) Get(ctx context.Context, txHash string) (*entity.Deposit, error) {
	var result entity.Deposit
	if err := xcontext.DB(ctx).Take(&result, "tx_hash=?", txHash).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *depositRepository) GetByAddress(ctx context.Context, address string) ([]entity.Deposit, error) {
	var result []entity.Deposit
	err := xcontext.DB(ctx).Order("created_at DESC").Find(&result, "from_address=?", address).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus moves a deposit from one status to another. It returns
// gorm.ErrRecordNotFound if the deposit is not in the from status.
func (r *depositRepository) UpdateStatus(
	ctx context.Context, txHash string, from, to entity.DepositStatusType, sequence uint64,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Deposit{}).
		Where("tx_hash=? AND status=?", txHash, from).
		Updates(map[string]any{"status": to, "sequence": sequence})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
