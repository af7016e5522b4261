package service

import (
	"context"
	"testing"

	"team11_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedScorer(t *testing.T) {
	s := NewFixedScorer(DefaultFixedScore)

	w := s.Assess(context.Background(), ScoreInput{Kind: model.KindWriting, TopicID: "T1", Text: "x"})
	assert.Equal(t, 90.0, w.Score)
	assert.Equal(t, WritingFeedback, w.Feedback)
	assert.Len(t, w.Suggestions, 3)
	assert.Nil(t, w.PronunciationScore)

	l := s.Assess(context.Background(), ScoreInput{Kind: model.KindListening, TopicID: "T1"})
	assert.Equal(t, ListeningFeedback, l.Feedback)
	require.NotNil(t, l.PronunciationScore)
	assert.Equal(t, 90.0, *l.PronunciationScore)

	// drafts must not share the package-level suggestion slices
	w.Suggestions[0] = "changed"
	again := s.Assess(context.Background(), ScoreInput{Kind: model.KindWriting})
	assert.NotEqual(t, "changed", again.Suggestions[0])
}

func TestFixedScorerConfigurable(t *testing.T) {
	d := NewFixedScorer(75).Assess(context.Background(), ScoreInput{Kind: model.KindWriting})
	assert.Equal(t, 75.0, d.Score)
	require.NotNil(t, d.GrammarScore)
	assert.Equal(t, 75.0, *d.GrammarScore)
}

func TestDraftToResult(t *testing.T) {
	r, err := AssessmentDraft{Score: 90, Feedback: "ok"}.toResult()
	require.NoError(t, err)
	assert.Equal(t, []string{}, r.SuggestionList())
	assert.JSONEq(t, `[]`, string(r.Suggestions))
}

func TestAudioObjectKey(t *testing.T) {
	a := AudioObjectKey(42, ".webm")
	b := AudioObjectKey(42, ".webm")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^team11/audio/42/[0-9a-f-]{36}\.webm$`, a)
}
