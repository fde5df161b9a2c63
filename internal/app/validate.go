package app

import (
	"fmt"
	"strings"

	"quizmaker-service/internal/domain"
)

const (
	minOptions = 2
	maxOptions = 4
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	return nil
}

// normalizeQuestions validates the question set and assigns ids to
// questions and options that do not carry one yet.
func normalizeQuestions(questions []domain.Question, newID func() string) ([]domain.Question, error) {
	if len(questions) == 0 {
		return nil, domain.NewValidationError("questions", "at least one question is required")
	}

	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return nil, domain.NewValidationError(field+".text", "is required")
		}
		if len(q.Options) < minOptions || len(q.Options) > maxOptions {
			return nil, domain.NewValidationError(field+".options", fmt.Sprintf("must have between %d and %d options", minOptions, maxOptions))
		}

		correct := 0
		options := make([]domain.Option, len(q.Options))
		for j, o := range q.Options {
			o.Text = strings.TrimSpace(o.Text)
			if o.Text == "" {
				return nil, domain.NewValidationError(fmt.Sprintf("%s.options[%d].text", field, j), "is required")
			}
			if o.IsCorrect {
				correct++
			}
			if o.ID == "" {
				o.ID = newID()
			}
			options[j] = o
		}
		if correct > 1 {
			return nil, domain.NewValidationError(field+".options", "at most one option can be correct")
		}

		if q.ID == "" {
			q.ID = newID()
		}
		q.Options = options
		out[i] = q
	}
	return out, nil
}
