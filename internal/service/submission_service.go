package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"team11_backend/internal/config"
	"team11_backend/internal/model"
	"team11_backend/internal/repository"
	"team11_backend/internal/util"
	"team11_backend/pkg/logger"
	"team11_backend/pkg/monitoring"
	"team11_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// BlobStore is the part of the storage service submissions need.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DurationProber reads the duration of a recording in seconds.
type DurationProber func(r io.Reader, ext string) (float64, error)

type SubmissionService struct {
	Repo    *repository.SubmissionRepository
	Storage BlobStore
	Scorer  Scorer
	Cache   DashboardCache
	Audio   config.AudioConfig
	Prober  DurationProber
}

func NewSubmissionService(repo *repository.SubmissionRepository, storage BlobStore, scorer Scorer, cache DashboardCache, audio config.AudioConfig) *SubmissionService {
	s := &SubmissionService{
		Repo:    repo,
		Storage: storage,
		Scorer:  scorer,
		Cache:   cache,
		Audio:   audio,
	}
	if audio.ProbeDuration {
		s.Prober = util.ProbeAudioDuration
	}
	return s
}

type WritingSubmissionRequest struct {
	TopicID string `json:"topic_id" form:"topic_id" validate:"required"`
	Text    string `json:"text" form:"text" validate:"required,notblank"`
}

// AudioUpload is a recording received in the request body.
type AudioUpload struct {
	File     io.ReadSeeker
	Filename string
	Size     int64
}

type ListeningSubmissionRequest struct {
	TopicID         string       `json:"topic_id" form:"topic_id" validate:"required"`
	AudioURL        string       `json:"audio_url" form:"audio_url" validate:"omitempty,max=512"`
	DurationSeconds float64      `json:"duration_seconds" form:"duration_seconds" validate:"gte=0"`
	Audio           *AudioUpload `json:"-" form:"-"`
}

func (r *ListeningSubmissionRequest) hasAudio() bool {
	if r.Audio != nil && r.Audio.File != nil && r.Audio.Size > 0 {
		return true
	}
	return strings.TrimSpace(r.AudioURL) != ""
}

// validateRequest merges struct tag failures with the topic and payload rules.
func validateRequest(req interface{}, kind model.SubmissionKind, topicID string, extra ...util.FieldError) error {
	var fields []util.FieldError
	if err := util.ValidateStruct(req); err != nil {
		ve, ok := util.IsValidationError(err)
		if !ok {
			return err
		}
		fields = append(fields, ve.Fields...)
	}
	if topicID != "" {
		if _, ok := model.FindTopic(kind, topicID); !ok {
			fields = append(fields, util.FieldError{Field: "topic_id", Error: "unknown " + string(kind) + " topic " + topicID})
		}
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return util.NewValidationError(errors.New(util.JoinFieldErrors(fields)), fields...)
}

func (s *SubmissionService) SubmitWriting(ctx context.Context, userID uint, req WritingSubmissionRequest) (*model.Submission, error) {
	ctx, span := tracing.Start(ctx, "SubmissionService.SubmitWriting")
	defer span.End()
	kind := string(model.KindWriting)

	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	if err := validateRequest(&req, model.KindWriting, req.TopicID); err != nil {
		monitoring.ObserveSubmission(kind, monitoring.OutcomeInvalid)
		return nil, err
	}

	writing := &model.WritingSubmission{
		TopicID:   req.TopicID,
		Text:      req.Text,
		WordCount: len(strings.Fields(req.Text)),
	}
	draft := s.Scorer.Assess(ctx, ScoreInput{
		Kind:    model.KindWriting,
		TopicID: req.TopicID,
		Text:    req.Text,
	})

	sub, err := s.persist(ctx, userID, model.KindWriting, writing, nil, draft)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		monitoring.ObserveSubmission(kind, monitoring.OutcomeFailed)
		return nil, err
	}

	span.SetAttributes(attribute.String("submission.id", sub.ID))
	monitoring.ObserveSubmission(kind, monitoring.OutcomeCreated)
	logger.Log.Info("writing submission created",
		zap.String("submissionId", sub.ID),
		zap.Uint("userId", userID),
		zap.String("topicId", req.TopicID),
		zap.Int("wordCount", writing.WordCount),
	)
	return sub, nil
}

func (s *SubmissionService) SubmitListening(ctx context.Context, userID uint, req ListeningSubmissionRequest) (*model.Submission, error) {
	ctx, span := tracing.Start(ctx, "SubmissionService.SubmitListening")
	defer span.End()
	kind := string(model.KindListening)

	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}

	var extra []util.FieldError
	if !req.hasAudio() {
		extra = append(extra, util.FieldError{Field: "audio", Error: util.ErrMissingAudio.Error()})
	}
	if err := validateRequest(&req, model.KindListening, req.TopicID, extra...); err != nil {
		monitoring.ObserveSubmission(kind, monitoring.OutcomeInvalid)
		return nil, err
	}

	listening := &model.ListeningSubmission{
		TopicID:         req.TopicID,
		AudioURL:        strings.TrimSpace(req.AudioURL),
		DurationSeconds: req.DurationSeconds,
	}

	var storedKey string
	if req.Audio != nil && req.Audio.File != nil && req.Audio.Size > 0 {
		key, err := s.storeAudio(ctx, userID, req.Audio, listening)
		if err != nil {
			if _, ok := util.IsValidationError(err); ok {
				monitoring.ObserveSubmission(kind, monitoring.OutcomeInvalid)
			} else {
				monitoring.ObserveSubmission(kind, monitoring.OutcomeStoreFail)
			}
			return nil, err
		}
		storedKey = key
	}

	draft := s.Scorer.Assess(ctx, ScoreInput{
		Kind:            model.KindListening,
		TopicID:         req.TopicID,
		AudioURL:        listening.AudioURL,
		DurationSeconds: listening.DurationSeconds,
	})

	sub, err := s.persist(ctx, userID, model.KindListening, nil, listening, draft)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		monitoring.ObserveSubmission(kind, monitoring.OutcomeFailed)
		if storedKey != "" {
			if derr := s.Storage.Delete(ctx, storedKey); derr != nil {
				logger.Log.Error("failed to remove orphaned audio", zap.String("key", storedKey), zap.Error(derr))
			}
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("submission.id", sub.ID))
	monitoring.ObserveSubmission(kind, monitoring.OutcomeCreated)
	logger.Log.Info("listening submission created",
		zap.String("submissionId", sub.ID),
		zap.Uint("userId", userID),
		zap.String("topicId", req.TopicID),
		zap.String("audioUrl", listening.AudioURL),
	)
	return sub, nil
}

// storeAudio checks and uploads a recording and fills the audio fields of l.
// It returns the object key so a failed transaction can remove the blob.
func (s *SubmissionService) storeAudio(ctx context.Context, userID uint, audio *AudioUpload, l *model.ListeningSubmission) (string, error) {
	if limit := s.Audio.MaxSizeBytes(); limit > 0 && audio.Size > limit {
		return "", util.NewValidationError(util.ErrAudioTooLarge, util.FieldError{Field: "audio", Error: util.ErrAudioTooLarge.Error()})
	}

	contentType, err := util.SniffAudio(audio.File)
	if err != nil {
		if errors.Is(err, util.ErrUnsupportedAudio) {
			return "", util.NewValidationError(err, util.FieldError{Field: "audio", Error: err.Error() + ": " + contentType})
		}
		return "", err
	}
	ext := util.AudioExtension(audio.Filename, contentType)

	if s.Prober != nil {
		if d, perr := s.Prober(audio.File, ext); perr == nil && d > 0 {
			l.DurationSeconds = d
		} else if perr != nil {
			logger.Log.Debug("audio probe failed, keeping reported duration", zap.Error(perr))
		}
		if _, err := audio.File.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
	}

	key := AudioObjectKey(userID, ext)
	url, err := s.Storage.Upload(ctx, key, audio.File, audio.Size, contentType)
	if err != nil {
		logger.Log.Error("audio upload failed", zap.String("key", key), zap.Error(err))
		return "", err
	}

	l.AudioURL = url
	l.ContentType = contentType
	l.SizeBytes = audio.Size
	return key, nil
}

func (s *SubmissionService) persist(ctx context.Context, userID uint, kind model.SubmissionKind, w *model.WritingSubmission, l *model.ListeningSubmission, draft AssessmentDraft) (*model.Submission, error) {
	result, err := draft.toResult()
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		UserID: userID,
		Kind:   kind,
	}
	bundle := &repository.SubmissionBundle{
		Submission: sub,
		Writing:    w,
		Listening:  l,
		Result:     result,
	}
	if err := s.Repo.CreateScored(ctx, bundle); err != nil {
		logger.Log.Error("submission transaction rolled back",
			zap.Uint("userId", userID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil, util.NewPersistenceError("save "+string(kind)+" submission", err)
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, userID)
	}
	return sub, nil
}
