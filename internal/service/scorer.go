package service

import (
	"context"
	"team11_backend/internal/model"
)

// ScoreInput is what a scorer may look at.
type ScoreInput struct {
	Kind            model.SubmissionKind
	TopicID         string
	Text            string
	AudioURL        string
	DurationSeconds float64
}

// AssessmentDraft is a scorer's verdict before it is persisted.
type AssessmentDraft struct {
	Score              float64
	GrammarScore       *float64
	VocabularyScore    *float64
	CoherenceScore     *float64
	FluencyScore       *float64
	PronunciationScore *float64
	Feedback           string
	Suggestions        []string
}

// Scorer produces the assessment of a submission.
type Scorer interface {
	Assess(ctx context.Context, in ScoreInput) AssessmentDraft
}

const DefaultFixedScore = 90.0

const (
	WritingFeedback   = "Great work! Your writing demonstrates good command of the language."
	ListeningFeedback = "Excellent speaking performance! Your pronunciation is clear."
)

var (
	writingSuggestions = []string{
		"Try to use more complex sentence structures",
		"Expand your vocabulary with synonyms",
		"Pay attention to paragraph transitions",
	}
	listeningSuggestions = []string{
		"Work on your intonation patterns",
		"Try to speak more naturally",
		"Reduce filler words like 'um' and 'uh'",
	}
)

// FixedScorer is the placeholder scorer: every submission gets the same
// score and the canned feedback of its kind.
type FixedScorer struct {
	Value float64
}

func NewFixedScorer(value float64) *FixedScorer {
	return &FixedScorer{Value: value}
}

func (s *FixedScorer) Assess(ctx context.Context, in ScoreInput) AssessmentDraft {
	v := s.Value
	score := func() *float64 {
		x := v
		return &x
	}

	d := AssessmentDraft{
		Score:           v,
		GrammarScore:    score(),
		VocabularyScore: score(),
		CoherenceScore:  score(),
		FluencyScore:    score(),
	}
	switch in.Kind {
	case model.KindListening:
		d.PronunciationScore = score()
		d.Feedback = ListeningFeedback
		d.Suggestions = append([]string(nil), listeningSuggestions...)
	default:
		d.Feedback = WritingFeedback
		d.Suggestions = append([]string(nil), writingSuggestions...)
	}
	return d
}

func (d AssessmentDraft) toResult() (*model.AssessmentResult, error) {
	r := &model.AssessmentResult{
		Score:              d.Score,
		GrammarScore:       d.GrammarScore,
		VocabularyScore:    d.VocabularyScore,
		CoherenceScore:     d.CoherenceScore,
		FluencyScore:       d.FluencyScore,
		PronunciationScore: d.PronunciationScore,
		Feedback:           d.Feedback,
	}
	if err := r.SetSuggestions(d.Suggestions); err != nil {
		return nil, err
	}
	return r, nil
}
