package quiz

import (
	"encoding/json"
	"strconv"
	"time"
)

// Question is one multiple-choice entry of a generated quiz document.
// CorrectAnswer must equal one of Options; documents violating that are
// rejected at ingestion (see validate.go).
type Question struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

// Quiz is the document produced by the external generator, augmented by the
// repository with class provenance on ingest. Immutable once appended.
type Quiz struct {
	ID            string     `json:"id,omitempty"`
	Questions     []Question `json:"questions" validate:"required,min=1,dive"`
	ClassID       string     `json:"classId,omitempty"`
	ClassName     string     `json:"className,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
	NumQuestions  int        `json:"numQuestions,omitempty"`
	QuestionTypes []string   `json:"questionTypes,omitempty"`
}

// Key is the quiz's identity within its class: the explicit ID when one was
// supplied, otherwise its position index.
func (q Quiz) Key(index int) string {
	if q.ID != "" {
		return q.ID
	}
	return strconv.Itoa(index)
}

// Class groups the quizzes an instructor generated for one course.
type Class struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Quizzes []Quiz `json:"quizzes"`
	// StudentResults is reserved by the stored format; nothing writes it yet.
	StudentResults []json.RawMessage `json:"studentResults"`
}

// Attempt is one learner's completed scoring of one quiz. Never mutated; the
// ledger only appends.
type Attempt struct {
	ID             string    `json:"id"`
	ClassID        string    `json:"classId"`
	QuizID         string    `json:"quizId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Selections maps question index to the chosen option while a quiz is being
// taken. Ephemeral; never persisted.
type Selections map[int]string

// Redact strips answer keys and explanations for the learner-facing view.
func Redact(q Quiz) Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.CorrectAnswer = ""
		qu.Explanation = ""
		out.Questions[i] = qu
	}
	return out
}

// RedactClass applies Redact to every quiz in the class.
func RedactClass(c Class) Class {
	out := c
	out.Quizzes = make([]Quiz, len(c.Quizzes))
	for i, q := range c.Quizzes {
		out.Quizzes[i] = Redact(q)
	}
	return out
}
