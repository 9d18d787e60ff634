package repository

import (
	"context"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	CreateIfNotExists(ctx context.Context, address string) error
	Get(ctx context.Context, address string) (*entity.Account, error)
	IncreaseNonce(ctx context.Context, address string, nonce uint64) error
}

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) CreateIfNotExists(ctx context.Context, address string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.Account{Address: address}).Error
}

func (r *accountRepository) Get(ctx context.Context, address string) (*entity.Account, error) {
	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// IncreaseNonce consumes nonce. It returns gorm.ErrRecordNotFound if nonce is
// not the next expected one.
func (r *accountRepository) IncreaseNonce(ctx context.Context, address string, nonce uint64) error {
	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("address=? AND nonce=?", address, nonce).
		Update("nonce", gorm.Expr("nonce+?", 1))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
