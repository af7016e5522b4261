package repository_test

import (
	"context"
	"testing"
	"time"

	"team11_backend/internal/model"
	"team11_backend/internal/repository"
	"team11_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func writingBundle(userID uint, createdAt time.Time) *repository.SubmissionBundle {
	result := &model.AssessmentResult{Score: 90, Feedback: "fine"}
	_ = result.SetSuggestions([]string{"a", "b"})
	sub := &model.Submission{UserID: userID, Kind: model.KindWriting}
	sub.CreatedAt = createdAt
	return &repository.SubmissionBundle{
		Submission: sub,
		Writing:    &model.WritingSubmission{TopicID: "T1", Text: "hello there", WordCount: 2},
		Result:     result,
	}
}

func TestCreateScored(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSubmissionRepository(db)
	ctx := context.Background()

	b := writingBundle(1, time.Now())
	require.NoError(t, repo.CreateScored(ctx, b))

	sub := b.Submission
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, model.StatusScored, sub.Status)
	assert.Equal(t, sub.ID, b.Writing.SubmissionID)
	assert.Equal(t, sub.ID, b.Result.SubmissionID)

	got, err := repo.FindByIDForUser(ctx, sub.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusScored, got.Status)
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 90.0, *got.OverallScore)
	require.NotNil(t, got.Writing)
	assert.Equal(t, "hello there", got.Writing.Text)
	require.NotNil(t, got.Result)
	assert.Equal(t, []string{"a", "b"}, got.Result.SuggestionList())
	assert.Nil(t, got.Listening)
	assert.Equal(t, "T1", got.TopicID())
}

func TestCreateScoredRejectsIncompleteBundle(t *testing.T) {
	repo := repository.NewSubmissionRepository(testutil.NewDB(t))
	ctx := context.Background()

	b := writingBundle(1, time.Now())
	b.Result = nil
	assert.Error(t, repo.CreateScored(ctx, b))

	b = writingBundle(1, time.Now())
	b.Listening = &model.ListeningSubmission{TopicID: "T1", AudioURL: "x"}
	assert.Error(t, repo.CreateScored(ctx, b))

	b = writingBundle(1, time.Now())
	b.Writing = nil
	assert.Error(t, repo.CreateScored(ctx, b))
}

func TestCreateScoredRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSubmissionRepository(db)
	require.NoError(t, db.Migrator().DropTable(&model.AssessmentResult{}))

	err := repo.CreateScored(context.Background(), writingBundle(1, time.Now()))
	require.Error(t, err)

	var subs, writing int64
	require.NoError(t, db.Model(&model.Submission{}).Count(&subs).Error)
	require.NoError(t, db.Model(&model.WritingSubmission{}).Count(&writing).Error)
	assert.Zero(t, subs)
	assert.Zero(t, writing)
}

func TestListByUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSubmissionRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		b := writingBundle(5, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.CreateScored(ctx, b))
		ids = append(ids, b.Submission.ID)
	}
	require.NoError(t, repo.CreateScored(ctx, writingBundle(6, base)))

	subs, err := repo.ListByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, ids[2], subs[0].ID)
	assert.Equal(t, ids[1], subs[1].ID)
	assert.Equal(t, ids[0], subs[2].ID)
	for _, s := range subs {
		assert.EqualValues(t, 5, s.UserID)
		assert.NotNil(t, s.Writing)
		assert.NotNil(t, s.Result)
	}

	page, total, err := repo.ListByUserPage(ctx, 5, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)

	empty, err := repo.ListByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindByIDForUserHidesOtherUsers(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSubmissionRepository(db)
	ctx := context.Background()

	b := writingBundle(1, time.Now())
	require.NoError(t, repo.CreateScored(ctx, b))

	_, err := repo.FindByIDForUser(ctx, b.Submission.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
