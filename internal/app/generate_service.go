package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quizmaker-service/internal/domain"
)

const generatePromptTemplate = `Create a multiple choice quiz about the following request: %s

Reply with JSON only, no prose and no markdown, using exactly this shape:
{"quizTitle": "string", "questions": [{"question": "string", "choices": ["string", "string", "string", "string"], "correctAnswer": "string"}]}
Every correctAnswer must be one of its question's choices.`

// GenerateService drafts quizzes with an external text-generation model.
type GenerateService struct {
	generator TextGenerator
}

// NewGenerateService accepts a nil generator; Generate then reports
// domain.ErrGeneratorDisabled.
func NewGenerateService(generator TextGenerator) *GenerateService {
	return &GenerateService{generator: generator}
}

// Generate forwards the prompt and parses the model reply. Replies that do not
// hold a usable quiz yield a *domain.UpstreamError carrying the raw text.
func (s *GenerateService) Generate(ctx context.Context, prompt string) (domain.GeneratedQuiz, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.GeneratedQuiz{}, domain.NewValidationError("prompt", "is required")
	}
	if s.generator == nil {
		return domain.GeneratedQuiz{}, domain.ErrGeneratorDisabled
	}

	raw, err := s.generator.Generate(ctx, fmt.Sprintf(generatePromptTemplate, prompt))
	if err != nil {
		return domain.GeneratedQuiz{}, fmt.Errorf("generate quiz: %w", err)
	}

	return ParseGeneratedQuiz(raw)
}

// ParseGeneratedQuiz extracts the quiz object from a model reply, tolerating
// surrounding markdown fences or prose.
func ParseGeneratedQuiz(raw string) (domain.GeneratedQuiz, error) {
	body := strings.TrimSpace(raw)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return domain.GeneratedQuiz{}, &domain.UpstreamError{Raw: raw, Err: errors.New("no JSON object in reply")}
	}

	var quiz domain.GeneratedQuiz
	if err := json.Unmarshal([]byte(body[start:end+1]), &quiz); err != nil {
		return domain.GeneratedQuiz{}, &domain.UpstreamError{Raw: raw, Err: err}
	}
	if err := checkGeneratedQuiz(quiz); err != nil {
		return domain.GeneratedQuiz{}, &domain.UpstreamError{Raw: raw, Err: err}
	}
	return quiz, nil
}

func checkGeneratedQuiz(quiz domain.GeneratedQuiz) error {
	if strings.TrimSpace(quiz.QuizTitle) == "" {
		return errors.New("missing quizTitle")
	}
	if len(quiz.Questions) == 0 {
		return errors.New("no questions")
	}
	for i, q := range quiz.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has no text", i)
		}
		if len(q.Choices) < minOptions {
			return fmt.Errorf("question %d has %d choices", i, len(q.Choices))
		}
		found := false
		for _, c := range q.Choices {
			if c == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %d: correctAnswer is not one of the choices", i)
		}
	}
	return nil
}
