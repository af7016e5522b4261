package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindTopicIsScopedByKind(t *testing.T) {
	w, ok := FindTopic(KindWriting, "T1")
	assert.True(t, ok)
	l, ok := FindTopic(KindListening, "T1")
	assert.True(t, ok)
	assert.NotEqual(t, w.Prompt, l.Prompt)

	_, ok = FindTopic(KindWriting, "T4")
	assert.False(t, ok)
	_, ok = FindTopic(SubmissionKind("reading"), "T1")
	assert.False(t, ok)
}

func TestTopicAtFallsBackToFirst(t *testing.T) {
	topic, idx := TopicAt(KindListening, 2)
	assert.Equal(t, "T3", topic.ID)
	assert.Equal(t, 2, idx)

	for _, bad := range []int{-1, 3, 100} {
		topic, idx = TopicAt(KindWriting, bad)
		assert.Equal(t, "T1", topic.ID)
		assert.Equal(t, 0, idx)
	}
}

func TestMarkScoredOnlyFromPending(t *testing.T) {
	s := &Submission{Status: StatusPending}
	assert.True(t, s.MarkScored(90))
	assert.Equal(t, StatusScored, s.Status)
	assert.Equal(t, 90.0, *s.OverallScore)

	assert.False(t, s.MarkScored(10))
	assert.Equal(t, 90.0, *s.OverallScore)
}

func TestSuggestionList(t *testing.T) {
	r := &AssessmentResult{}
	assert.Empty(t, r.SuggestionList())

	assert.NoError(t, r.SetSuggestions([]string{"one", "two"}))
	assert.Equal(t, []string{"one", "two"}, r.SuggestionList())

	r.Suggestions = []byte("{broken")
	assert.Nil(t, r.SuggestionList())
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(GenerateUUID()))
	assert.False(t, IsUUID("42"))
	assert.False(t, IsUUID(""))
}
