package models

// Topic represents an exam syllabus area (e.g. "Financial Reporting")
type Topic struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Question represents a multiple-choice exam question
type Question struct {
	ID            string `json:"id"`
	TopicID       int    `json:"topicId"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"correctOption"` // "A", "B", "C" or "D"
	Explanation   string `json:"explanation"`
	Difficulty    int    `json:"difficulty"` // 1 (easy) to 3 (hard)
}

// QuestionResponse represents a question in quiz API responses.
// The correct option and explanation are stripped so the client cannot cheat.
type QuestionResponse struct {
	ID         string `json:"id"`
	TopicID    int    `json:"topicId"`
	Text       string `json:"text"`
	OptionA    string `json:"optionA"`
	OptionB    string `json:"optionB"`
	OptionC    string `json:"optionC"`
	OptionD    string `json:"optionD"`
	Difficulty int    `json:"difficulty"`
}

// ToResponse converts a question to its client-safe representation
func (q Question) ToResponse() QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		TopicID:    q.TopicID,
		Text:       q.Text,
		OptionA:    q.OptionA,
		OptionB:    q.OptionB,
		OptionC:    q.OptionC,
		OptionD:    q.OptionD,
		Difficulty: q.Difficulty,
	}
}
