package quiz

import "math"

// ScoreResult is the aggregate outcome of scoring one quiz.
type ScoreResult struct {
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// ReviewState is the per-question render state after submission.
type ReviewState string

const (
	ReviewUnanswered ReviewState = "unanswered"
	ReviewCorrect    ReviewState = "correct"
	ReviewIncorrect  ReviewState = "incorrect"
)

// Score compares each selection to the question's correct answer by exact
// string equality. Unanswered indexes never match; stray keys outside the
// question range are ignored. Pure function: rescoring identical inputs
// yields identical results.
func Score(q Quiz, sel Selections) ScoreResult {
	res := ScoreResult{Total: len(q.Questions)}
	for i, question := range q.Questions {
		if chosen, ok := sel[i]; ok && chosen == question.CorrectAnswer {
			res.CorrectCount++
		}
	}
	return res
}

// CanSubmit reports whether every question index has a selection. Partial
// submissions are not allowed; extra keys do not help.
func CanSubmit(q Quiz, sel Selections) bool {
	for i := range q.Questions {
		if _, ok := sel[i]; !ok {
			return false
		}
	}
	return true
}

// Review derives the three-way render state per question from the same
// equality check Score uses. Presentation only; not part of the scoring
// contract.
func Review(q Quiz, sel Selections) []ReviewState {
	states := make([]ReviewState, len(q.Questions))
	for i, question := range q.Questions {
		chosen, ok := sel[i]
		switch {
		case !ok:
			states[i] = ReviewUnanswered
		case chosen == question.CorrectAnswer:
			states[i] = ReviewCorrect
		default:
			states[i] = ReviewIncorrect
		}
	}
	return states
}

// Percentage rounds correct/total to the nearest integer percentage. A zero
// denominator is defined as 0, not an error.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
