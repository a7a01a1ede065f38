package quiz

// Phase is the state of one quiz-taking session.
type Phase string

const (
	PhaseUnanswered Phase = "unanswered"
	PhasePartial    Phase = "partially-answered"
	PhaseFull       Phase = "fully-answered"
	PhaseSubmitted  Phase = "submitted"
)

// Taking tracks one in-progress pass over a quiz document. Selections live
// only here; submission is a one-way transition after which they freeze.
// Loading a different document resets to the initial phase.
type Taking struct {
	quiz      Quiz
	sel       Selections
	submitted bool
	result    ScoreResult
}

func NewTaking(q Quiz) *Taking {
	return &Taking{quiz: q, sel: Selections{}}
}

// Reset swaps in a new quiz document and clears all selections.
func (t *Taking) Reset(q Quiz) {
	t.quiz = q
	t.sel = Selections{}
	t.submitted = false
	t.result = ScoreResult{}
}

// Select records the chosen option for a question index. Rejected once
// submitted or when the index is out of range.
func (t *Taking) Select(index int, option string) error {
	if t.submitted {
		return ErrAlreadySubmitted
	}
	if index < 0 || index >= len(t.quiz.Questions) {
		return ErrQuizNotFound
	}
	t.sel[index] = option
	return nil
}

func (t *Taking) Phase() Phase {
	switch {
	case t.submitted:
		return PhaseSubmitted
	case len(t.sel) == 0:
		return PhaseUnanswered
	case CanSubmit(t.quiz, t.sel):
		return PhaseFull
	default:
		return PhasePartial
	}
}

// Submit scores the selections. Only reachable from the fully-answered phase;
// terminal once taken.
func (t *Taking) Submit() (ScoreResult, error) {
	if t.submitted {
		return t.result, ErrAlreadySubmitted
	}
	if !CanSubmit(t.quiz, t.sel) {
		return ScoreResult{}, ErrNotReady
	}
	t.result = Score(t.quiz, t.sel)
	t.submitted = true
	return t.result, nil
}

// Result returns the score once submitted.
func (t *Taking) Result() (ScoreResult, bool) {
	return t.result, t.submitted
}

// Review exposes the per-question render states for the current selections.
func (t *Taking) Review() []ReviewState {
	return Review(t.quiz, t.sel)
}

// Selections returns a copy; callers cannot mutate frozen state through it.
func (t *Taking) Selections() Selections {
	out := make(Selections, len(t.sel))
	for k, v := range t.sel {
		out[k] = v
	}
	return out
}
