package model

// Topic is a static prompt a submission responds to. Ids are scoped by kind.
type Topic struct {
	ID     string         `json:"id"`
	Kind   SubmissionKind `json:"kind"`
	Prompt string         `json:"prompt"`
}

var WritingTopics = []Topic{
	{ID: "T1", Kind: KindWriting, Prompt: "Describe your favorite holiday destination and explain why you enjoy it."},
	{ID: "T2", Kind: KindWriting, Prompt: "What are the advantages and disadvantages of working from home?"},
	{ID: "T3", Kind: KindWriting, Prompt: "Discuss the impact of social media on modern communication."},
}

var ListeningTopics = []Topic{
	{ID: "T1", Kind: KindListening, Prompt: "Describe a memorable experience from your childhood."},
	{ID: "T2", Kind: KindListening, Prompt: "Talk about your career goals and how you plan to achieve them."},
	{ID: "T3", Kind: KindListening, Prompt: "Explain the importance of learning a foreign language."},
}

func TopicsOf(kind SubmissionKind) []Topic {
	switch kind {
	case KindWriting:
		return WritingTopics
	case KindListening:
		return ListeningTopics
	}
	return nil
}

func FindTopic(kind SubmissionKind, id string) (Topic, bool) {
	for _, t := range TopicsOf(kind) {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// TopicAt picks a topic by position and falls back to the first one when
// the index is out of range.
func TopicAt(kind SubmissionKind, index int) (Topic, int) {
	topics := TopicsOf(kind)
	if len(topics) == 0 {
		return Topic{}, 0
	}
	if index < 0 || index >= len(topics) {
		return topics[0], 0
	}
	return topics[index], index
}
