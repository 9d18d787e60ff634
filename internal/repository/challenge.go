package repository

import (
	"context"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *entity.Challenge) error
	GetByID(ctx context.Context, id int64) (*entity.Challenge, error)
	GetList(ctx context.Context, filter ChallengeFilter) ([]entity.Challenge, error)
	UpdateState(ctx context.Context, challenge *entity.Challenge, prevSequence uint64) error
}

type ChallengeFilter struct {
	Creator    string
	ActiveOnly bool
	Offset     int
	Limit      int
}

type challengeRepository struct{}

func NewChallengeRepository() *challengeRepository {
	return &challengeRepository{}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *entity.Challenge) error {
	return xcontext.DB(ctx).Create(challenge).Error
}

func (r *challengeRepository) GetByID(ctx context.Context, id int64) (*entity.Challenge, error) {
	var result entity.Challenge
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *challengeRepository) GetList(ctx context.Context, filter ChallengeFilter) ([]entity.Challenge, error) {
	tx := xcontext.DB(ctx).Model(&entity.Challenge{})
	if filter.Creator != "" {
		tx = tx.Where("creator=?", filter.Creator)
	}

	if filter.ActiveOnly {
		tx = tx.Where("is_active=?", true)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Challenge
	if err := tx.Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateState writes the mutable columns of challenge only if the stored row
// is still at prevSequence. It returns gorm.ErrRecordNotFound otherwise.
func (r *challengeRepository) UpdateState(ctx context.Context, challenge *entity.Challenge, prevSequence uint64) error {
	tx := xcontext.DB(ctx).Model(&entity.Challenge{}).
		Where("id=? AND sequence=?", challenge.ID, prevSequence).
		Updates(map[string]any{
			"is_created":         challenge.IsCreated,
			"is_active":          challenge.IsActive,
			"name":               challenge.Name,
			"description":        challenge.Description,
			"entry_fee":          challenge.EntryFee,
			"start_time":         challenge.StartTime,
			"current_week":       challenge.CurrentWeek,
			"total_participants": challenge.TotalParticipants,
			"max_participants":   challenge.MaxParticipants,
			"week1_pool":         challenge.Week1Pool,
			"week2_pool":         challenge.Week2Pool,
			"week3_pool":         challenge.Week3Pool,
			"reserve":            challenge.Reserve,
			"sequence":           challenge.Sequence,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
