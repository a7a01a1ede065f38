package quiz

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(questionStructLevel, Question{})
	return v
}

func questionStructLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return
		}
	}
	sl.ReportError(q.CorrectAnswer, "CorrectAnswer", "correctAnswer", "inoptions", "")
}

// ValidateDocument checks an untrusted generator document before it can reach
// a repository. A correct answer that is not among the question's options
// would make the question unwinnable, so such documents are rejected here
// rather than tolerated downstream.
func ValidateDocument(q Quiz) error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid quiz document: %w", err)
	}
	return nil
}
