package quiz

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/storage"
)

const attemptsKeyPrefix = "attempts:"

// IdentitySource supplies the account the ledger is partitioned by. The
// session manager implements it; HTTP handlers bind a request's subject with
// Identity.
type IdentitySource interface {
	CurrentID() (string, bool)
}

// Identity is a fixed IdentitySource for a known account id.
type Identity string

func (i Identity) CurrentID() (string, bool) { return string(i), i != "" }

// Summary aggregates a set of attempts.
type Summary struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// AttemptLedger is the append-only record of a learner's completed attempts,
// persisted per account. Each operation reads the full record for the current
// account and mutations write it back whole.
type AttemptLedger struct {
	store storage.RecordStore
	ident IdentitySource
	now   func() time.Time
	newID func() string
}

func NewAttemptLedger(store storage.RecordStore, ident IdentitySource) *AttemptLedger {
	return &AttemptLedger{
		store: store,
		ident: ident,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithIdentity returns a ledger view bound to another identity source over
// the same durable storage.
func (l *AttemptLedger) WithIdentity(ident IdentitySource) *AttemptLedger {
	cp := *l
	cp.ident = ident
	return &cp
}

// Record appends an attempt stamped with a fresh id and the current time.
// Silent no-op without a current account or a positive question count.
func (l *AttemptLedger) Record(classID, quizID string, score, total int) (Attempt, bool) {
	id, ok := l.ident.CurrentID()
	if !ok || score < 0 || total <= 0 {
		return Attempt{}, false
	}
	a := Attempt{
		ID:             l.newID(),
		ClassID:        classID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: total,
		CompletedAt:    l.now().UTC(),
	}
	attempts := append(l.loadFor(id), a)
	data, err := json.Marshal(attempts)
	if err != nil {
		return Attempt{}, false
	}
	if err := l.store.Save(attemptsKeyPrefix+id, data); err != nil {
		return Attempt{}, false
	}
	return a, true
}

// List returns the current account's attempts in insertion order.
func (l *AttemptLedger) List() []Attempt {
	id, ok := l.ident.CurrentID()
	if !ok {
		return nil
	}
	return l.loadFor(id)
}

// ForClass filters attempts by class, preserving insertion order.
func (l *AttemptLedger) ForClass(classID string) []Attempt {
	var out []Attempt
	for _, a := range l.List() {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out
}

// HasCompleted reports whether any attempt exists for the quiz; the UI uses
// it to switch "Take Quiz" to "Retake Quiz".
func (l *AttemptLedger) HasCompleted(classID, quizID string) bool {
	for _, a := range l.List() {
		if a.ClassID == classID && a.QuizID == quizID {
			return true
		}
	}
	return false
}

// Summarize aggregates any attempt set: sum of scores over sum of question
// counts, rounded to the nearest percentage, 0 on an empty denominator.
func Summarize(attempts []Attempt) Summary {
	var s Summary
	for _, a := range attempts {
		s.Score += a.Score
		s.Total += a.TotalQuestions
	}
	s.Percentage = Percentage(s.Score, s.Total)
	return s
}

// Summary aggregates the current account's full ledger.
func (l *AttemptLedger) Summary() Summary {
	return Summarize(l.List())
}

// loadFor treats a missing or unparsable record as an empty ledger.
func (l *AttemptLedger) loadFor(accountID string) []Attempt {
	data, err := l.store.Load(attemptsKeyPrefix + accountID)
	if err != nil {
		return nil
	}
	var attempts []Attempt
	if err := json.Unmarshal(data, &attempts); err != nil {
		return nil
	}
	return attempts
}
