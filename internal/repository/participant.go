package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/habitchain/backend/internal/entity"
	"github.com/habitchain/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ParticipantRepository interface {
	Upsert(ctx context.Context, participant *entity.Participant) error
	Get(ctx context.Context, challengeID int64, address string) (*entity.Participant, error)
	GetByChallengeID(ctx context.Context, challengeID int64) ([]entity.Participant, error)
	GetWeeklyRanking(ctx context.Context, challengeID int64, week uint64, offset, limit int) ([]entity.Participant, error)
}

type participantRepository struct{}

func NewParticipantRepository() *participantRepository {
	return &participantRepository{}
}

func (r *participantRepository) Upsert(ctx context.Context, participant *entity.Participant) error {
	return xcontext.DB(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{
				{Name: "challenge_id"},
				{Name: "address"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"week1_points":     participant.Week1Points,
				"week2_points":     participant.Week2Points,
				"week3_points":     participant.Week3Points,
				"total_points":     participant.TotalPoints,
				"is_eliminated":    participant.IsEliminated,
				"elimination_week": participant.EliminationWeek,
				"last_task_time":   participant.LastTaskTime,
				"updated_at":       time.Now(),
			}),
		},
	).Create(participant).Error
}

func (r *participantRepository) Get(ctx context.Context, challengeID int64, address string) (*entity.Participant, error) {
	var result entity.Participant
	err := xcontext.DB(ctx).Take(&result, "challenge_id=? AND address=?", challengeID, address).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participantRepository) GetByChallengeID(ctx context.Context, challengeID int64) ([]entity.Participant, error) {
	var result []entity.Participant
	err := xcontext.DB(ctx).Order("address ASC").Find(&result, "challenge_id=?", challengeID).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetWeeklyRanking returns the participants still in the challenge, best
// performers of the given week first. Ties are broken by the earliest last
// task time, then by address.
func (r *participantRepository) GetWeeklyRanking(
	ctx context.Context, challengeID int64, week uint64, offset, limit int,
) ([]entity.Participant, error) {
	if week < 1 || week > 3 {
		return nil, fmt.Errorf("invalid week %d", week)
	}

	tx := xcontext.DB(ctx).
		Where("challenge_id=? AND is_eliminated=?", challengeID, false).
		Order(fmt.Sprintf("week%d_points DESC", week)).
		Order("last_task_time ASC").
		Order("address ASC")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}

	var result []entity.Participant
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
