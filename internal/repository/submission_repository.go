package repository

import (
	"context"
	"team11_backend/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// SubmissionBundle is everything written for one submission. Exactly one of
// Writing and Listening is set, matching Submission.Kind.
type SubmissionBundle struct {
	Submission *model.Submission
	Writing    *model.WritingSubmission
	Listening  *model.ListeningSubmission
	Result     *model.AssessmentResult
}

// CreateScored writes the submission, its payload and its result, then moves
// the submission from pending to scored. All of it commits or none of it does.
func (r *SubmissionRepository) CreateScored(ctx context.Context, b *SubmissionBundle) error {
	if b.Submission == nil || b.Result == nil {
		return errors.New("incomplete submission bundle")
	}
	if (b.Writing == nil) == (b.Listening == nil) {
		return errors.New("submission bundle needs exactly one payload")
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := b.Submission
		sub.Status = model.StatusPending
		sub.OverallScore = nil
		if err := tx.Omit(clause.Associations).Create(sub).Error; err != nil {
			return errors.Wrap(err, "create submission")
		}

		if b.Writing != nil {
			b.Writing.SubmissionID = sub.ID
			if err := tx.Create(b.Writing).Error; err != nil {
				return errors.Wrap(err, "create writing submission")
			}
		} else {
			b.Listening.SubmissionID = sub.ID
			if err := tx.Create(b.Listening).Error; err != nil {
				return errors.Wrap(err, "create listening submission")
			}
		}

		b.Result.SubmissionID = sub.ID
		if err := tx.Create(b.Result).Error; err != nil {
			return errors.Wrap(err, "create assessment result")
		}

		if !sub.MarkScored(b.Result.Score) {
			return errors.Errorf("submission %s is not pending", sub.ID)
		}
		err := tx.Model(&model.Submission{}).
			Where("id = ? AND status = ?", sub.ID, model.StatusPending).
			Updates(map[string]interface{}{
				"status":        sub.Status,
				"overall_score": sub.OverallScore,
			}).Error
		if err != nil {
			return errors.Wrap(err, "mark submission scored")
		}

		sub.Writing = b.Writing
		sub.Listening = b.Listening
		sub.Result = b.Result
		return nil
	})
}

func (r *SubmissionRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Writing").
		Preload("Listening").
		Preload("Result")
}

// ListByUser returns the user's submissions, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.withDetails(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&subs).Error
	return subs, errors.Wrap(err, "list submissions")
}

func (r *SubmissionRepository) ListByUserPage(ctx context.Context, userID uint, page, limit int) ([]model.Submission, int64, error) {
	var (
		subs  []model.Submission
		total int64
	)
	query := r.DB.WithContext(ctx).Model(&model.Submission{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count submissions")
	}

	offset := (page - 1) * limit
	err := r.withDetails(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Offset(offset).Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list submissions")
	}
	return subs, total, nil
}

// FindByIDForUser only finds rows owned by userID; anything else is
// gorm.ErrRecordNotFound.
func (r *SubmissionRepository) FindByIDForUser(ctx context.Context, id string, userID uint) (*model.Submission, error) {
	var sub model.Submission
	err := r.withDetails(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
