package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SubmissionKind string

const (
	KindWriting   SubmissionKind = "writing"
	KindListening SubmissionKind = "listening"
)

func (k SubmissionKind) Valid() bool {
	return k == KindWriting || k == KindListening
}

type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "pending"
	StatusScored  SubmissionStatus = "scored"
)

// swagger:model Submission
type Submission struct {
	UUIDBase
	UserID       uint             `gorm:"index;not null" json:"userId"`
	Kind         SubmissionKind   `gorm:"size:20;not null" json:"kind"`
	Status       SubmissionStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	OverallScore *float64         `json:"overallScore,omitempty"`

	Writing   *WritingSubmission   `gorm:"foreignKey:SubmissionID" json:"writing,omitempty"`
	Listening *ListeningSubmission `gorm:"foreignKey:SubmissionID" json:"listening,omitempty"`
	Result    *AssessmentResult    `gorm:"foreignKey:SubmissionID" json:"result,omitempty"`
}

func (Submission) TableName() string {
	return "team11_submissions"
}

// MarkScored is the only status transition a submission goes through.
func (s *Submission) MarkScored(score float64) bool {
	if s.Status != StatusPending {
		return false
	}
	s.Status = StatusScored
	s.OverallScore = &score
	return true
}

// TopicID returns the topic of whichever typed payload is loaded.
func (s *Submission) TopicID() string {
	switch {
	case s.Writing != nil:
		return s.Writing.TopicID
	case s.Listening != nil:
		return s.Listening.TopicID
	}
	return ""
}

// swagger:model WritingSubmission
type WritingSubmission struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SubmissionID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"submissionId"`
	TopicID      string    `gorm:"size:16;not null" json:"topicId"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	WordCount    int       `gorm:"not null;default:0" json:"wordCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (WritingSubmission) TableName() string {
	return "team11_writing_submissions"
}

// swagger:model ListeningSubmission
type ListeningSubmission struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SubmissionID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"submissionId"`
	TopicID         string    `gorm:"size:16;not null" json:"topicId"`
	AudioURL        string    `gorm:"size:512;not null" json:"audioUrl"`
	DurationSeconds float64   `gorm:"default:0" json:"durationSeconds"`
	ContentType     string    `gorm:"size:100" json:"contentType,omitempty"`
	SizeBytes       int64     `gorm:"default:0" json:"sizeBytes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (ListeningSubmission) TableName() string {
	return "team11_listening_submissions"
}

// swagger:model AssessmentResult
type AssessmentResult struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	SubmissionID       string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"submissionId"`
	Score              float64        `gorm:"not null" json:"score"`
	GrammarScore       *float64       `json:"grammarScore,omitempty"`
	VocabularyScore    *float64       `json:"vocabularyScore,omitempty"`
	CoherenceScore     *float64       `json:"coherenceScore,omitempty"`
	FluencyScore       *float64       `json:"fluencyScore,omitempty"`
	PronunciationScore *float64       `json:"pronunciationScore,omitempty"`
	Feedback           string         `gorm:"type:text" json:"feedback"`
	Suggestions        datatypes.JSON `json:"suggestions"`
	CreatedAt          time.Time      `json:"createdAt"`
}

func (AssessmentResult) TableName() string {
	return "team11_assessment_results"
}

// SuggestionList decodes Suggestions; malformed data yields an empty list.
func (r *AssessmentResult) SuggestionList() []string {
	var out []string
	if len(r.Suggestions) == 0 {
		return out
	}
	if err := json.Unmarshal(r.Suggestions, &out); err != nil {
		return nil
	}
	return out
}

func (r *AssessmentResult) SetSuggestions(items []string) error {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	r.Suggestions = datatypes.JSON(b)
	return nil
}

// AllModels lists every table owned by this service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Submission{},
		&WritingSubmission{},
		&ListeningSubmission{},
		&AssessmentResult{},
	}
}
