package quiz

import "errors"

var (
	// ErrClassNotFound is returned when a class id no longer resolves.
	ErrClassNotFound = errors.New("class not found")
	// ErrQuizNotFound is returned when a quiz id/index no longer resolves.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNameRequired rejects empty or whitespace-only class names.
	ErrNameRequired = errors.New("class name required")
	// ErrNotReady means a submission was attempted with unanswered questions.
	ErrNotReady = errors.New("quiz has unanswered questions")
	// ErrAlreadySubmitted guards the one-way transition out of taking a quiz.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
)
