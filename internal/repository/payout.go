package repository

import (
	"context"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PayoutRepository interface {
	CreateMany(ctx context.Context, payouts []entity.Payout) error
	GetByID(ctx context.Context, id string) (*entity.Payout, error)
	GetByStatus(ctx context.Context, status entity.PayoutStatusType, limit int) ([]entity.Payout, error)
	GetByChallengeID(ctx context.Context, challengeID int64) ([]entity.Payout, error)
	GetByAddress(ctx context.Context, address string) ([]entity.Payout, error)
	UpdateStatus(ctx context.Context, id string, from, to entity.PayoutStatusType, txHash string) error
}

type payoutRepository struct{}

func NewPayoutRepository() *payoutRepository {
	return &payoutRepository{}
}

func (r *payoutRepository) CreateMany(ctx context.Context, payouts []entity.Payout) error {
	if len(payouts) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&payouts).Error
}

func (r *payoutRepository) GetByID(ctx context.Context, id string) (*entity.Payout, error) {
	var result entity.Payout
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *payoutRepository) GetByStatus(
	ctx context.Context, status entity.PayoutStatusType, limit int,
) ([]entity.Payout, error) {
	tx := xcontext.DB(ctx).Where("status=?", status).Order("created_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var result []entity.Payout
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *payoutRepository) GetByChallengeID(ctx context.Context, challengeID int64) ([]entity.Payout, error) {
	var result []entity.Payout
	err := xcontext.DB(ctx).Order("sequence ASC, `rank` ASC").Find(&result, "challenge_id=?", challengeID).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *payoutRepository) GetByAddress(ctx context.Context, address string) ([]entity.Payout, error) {
	var result []entity.Payout
	err := xcontext.DB(ctx).Order("created_at DESC").Find(&result, "to_address=?", address).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus moves a payout from one status to another. It returns
// gorm.ErrRecordNotFound if the payout is not in the from status.
func (r *payoutRepository) UpdateStatus(
	ctx context.Context, id string, from, to entity.PayoutStatusType, txHash string,
) error {
	updates := map[string]any{"status": to}
	if txHash != "" {
		updates["tx_hash"] = txHash
	}

	tx := xcontext.DB(ctx).Model(&entity.Payout{}).
		Where("id=? AND status=?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
