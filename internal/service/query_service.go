package service

import (
	"context"
	"errors"
	"team11_backend/internal/model"
	"team11_backend/internal/repository"
	"team11_backend/internal/util"
	"team11_backend/pkg/tracing"
	"time"

	"gorm.io/gorm"
)

// SubmissionSummary is one dashboard row.
type SubmissionSummary struct {
	ID          string                 `json:"id"`
	Kind        model.SubmissionKind   `json:"kind"`
	Status      model.SubmissionStatus `json:"status"`
	Score       *float64               `json:"score,omitempty"`
	TopicID     string                 `json:"topicId"`
	TopicPrompt string                 `json:"topicPrompt"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// SubmissionDetail is a submission joined with its payload and result.
type SubmissionDetail struct {
	Submission  *model.Submission          `json:"submission"`
	Topic       model.Topic                `json:"topic"`
	Writing     *model.WritingSubmission   `json:"writing,omitempty"`
	Listening   *model.ListeningSubmission `json:"listening,omitempty"`
	Result      *model.AssessmentResult    `json:"result,omitempty"`
	Suggestions []string                   `json:"suggestions"`
}

type QueryService struct {
	Repo  *repository.SubmissionRepository
	Cache DashboardCache
}

func NewQueryService(repo *repository.SubmissionRepository, cache DashboardCache) *QueryService {
	return &QueryService{Repo: repo, Cache: cache}
}

func summarize(sub *model.Submission) SubmissionSummary {
	topicID := sub.TopicID()
	topic, _ := model.FindTopic(sub.Kind, topicID)
	return SubmissionSummary{
		ID:          sub.ID,
		Kind:        sub.Kind,
		Status:      sub.Status,
		Score:       sub.OverallScore,
		TopicID:     topicID,
		TopicPrompt: topic.Prompt,
		CreatedAt:   sub.CreatedAt,
	}
}

// ListSubmissions returns the caller's own submissions, most recent first.
func (s *QueryService) ListSubmissions(ctx context.Context, userID uint) ([]SubmissionSummary, error) {
	ctx, span := tracing.Start(ctx, "QueryService.ListSubmissions")
	defer span.End()

	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	if s.Cache != nil {
		if items, ok := s.Cache.Get(ctx, userID); ok {
			return items, nil
		}
	}

	subs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, util.NewPersistenceError("list submissions", err)
	}

	items := make([]SubmissionSummary, 0, len(subs))
	for i := range subs {
		items = append(items, summarize(&subs[i]))
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, userID, items)
	}
	return items, nil
}

func (s *QueryService) ListSubmissionsPage(ctx context.Context, userID uint, page, limit int) ([]SubmissionSummary, int64, error) {
	if userID == 0 {
		return nil, 0, util.ErrUnauthenticated
	}
	subs, total, err := s.Repo.ListByUserPage(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, util.NewPersistenceError("list submissions", err)
	}
	items := make([]SubmissionSummary, 0, len(subs))
	for i := range subs {
		items = append(items, summarize(&subs[i]))
	}
	return items, total, nil
}

// GetSubmissionDetail fails with util.ErrSubmissionNotFound when the id is
// malformed, unknown, or owned by someone else.
func (s *QueryService) GetSubmissionDetail(ctx context.Context, userID uint, submissionID string) (*SubmissionDetail, error) {
	ctx, span := tracing.Start(ctx, "QueryService.GetSubmissionDetail")
	defer span.End()

	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	if !model.IsUUID(submissionID) {
		return nil, util.ErrSubmissionNotFound
	}

	sub, err := s.Repo.FindByIDForUser(ctx, submissionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, util.NewPersistenceError("get submission", err)
	}

	topic, _ := model.FindTopic(sub.Kind, sub.TopicID())
	d := &SubmissionDetail{
		Submission: sub,
		Topic:      topic,
		Writing:    sub.Writing,
		Listening:  sub.Listening,
		Result:     sub.Result,
	}
	if sub.Result != nil {
		d.Suggestions = sub.Result.SuggestionList()
	}
	return d, nil
}

// ScorePoint is one point of the dashboard score trend.
type ScorePoint struct {
	At    time.Time
	Kind  model.SubmissionKind
	Score float64
}

// ScoreTrend lists scored submissions oldest first.
func (s *QueryService) ScoreTrend(ctx context.Context, userID uint) ([]ScorePoint, error) {
	items, err := s.ListSubmissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	points := make([]ScorePoint, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.Status != model.StatusScored || it.Score == nil {
			continue
		}
		points = append(points, ScorePoint{At: it.CreatedAt, Kind: it.Kind, Score: *it.Score})
	}
	return points, nil
}
