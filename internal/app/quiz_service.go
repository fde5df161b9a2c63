package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizmaker-service/internal/domain"
)

// DefaultJoinCodeAttempts bounds the generate-and-check loop on create.
const DefaultJoinCodeAttempts = 10

// ErrJoinCodesExhausted is returned when no unique join code was found.
var ErrJoinCodesExhausted = errors.New("could not allocate a unique join code")

// QuizService contains the quiz use cases.
type QuizService struct {
	quizzes  QuizRepository
	cache    QuizCache
	newCode  JoinCodeGenerator
	attempts int
	now      func() time.Time
	newID    func() string
}

func NewQuizService(quizzes QuizRepository, cache QuizCache, attempts int) *QuizService {
	if attempts <= 0 {
		attempts = DefaultJoinCodeAttempts
	}
	return &QuizService{
		quizzes:  quizzes,
		cache:    cache,
		newCode:  GenerateJoinCode,
		attempts: attempts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create validates the input and persists a quiz owned by the caller under a
// fresh join code.
func (s *QuizService) Create(ctx context.Context, owner domain.Identity, in domain.QuizInput) (domain.Quiz, error) {
	if err := validateTitle(in.Title); err != nil {
		return domain.Quiz{}, err
	}
	questions, err := normalizeQuestions(in.Questions, s.newID)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:           s.newID(),
		Title:        strings.TrimSpace(in.Title),
		GradeLevel:   strings.TrimSpace(in.GradeLevel),
		Description:  in.Description,
		OwnerID:      owner.ID,
		Questions:    questions,
		Participants: []domain.Participant{},
		CreatedAt:    s.now().UTC(),
	}

	for attempt := 0; attempt < s.attempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("generate join code: %w", err)
		}

		exists, err := s.quizzes.ExistsJoinCode(ctx, code)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("check join code: %w", err)
		}
		if exists {
			continue
		}

		quiz.JoinCode = code
		err = s.quizzes.CreateQuiz(ctx, quiz)
		if errors.Is(err, domain.ErrJoinCodeTaken) {
			// lost the race against a concurrent create
			continue
		}
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
		}
		return quiz, nil
	}

	return domain.Quiz{}, ErrJoinCodesExhausted
}

// ListMine returns the caller's quizzes, newest first.
func (s *QuizService) ListMine(ctx context.Context, owner domain.Identity) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.ListQuizzesByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// Get returns a quiz to its owner, correctness flags included.
func (s *QuizService) Get(ctx context.Context, caller domain.Identity, id string) (domain.Quiz, error) {
	return s.owned(ctx, caller, id)
}

// GetByJoinCode is the public lookup. The quiz is returned verbatim.
func (s *QuizService) GetByJoinCode(ctx context.Context, code string) (domain.Quiz, error) {
	code = normalizeJoinCode(code)
	if code == "" {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if s.cache == nil {
		return s.quizzes.GetQuizByJoinCode(ctx, code)
	}
	return s.cache.GetQuizByJoinCode(ctx, code)
}

// Update applies a partial update. Only the owner may edit.
func (s *QuizService) Update(ctx context.Context, caller domain.Identity, id string, patch domain.QuizPatch) (domain.Quiz, error) {
	current, err := s.owned(ctx, caller, id)
	if err != nil {
		return domain.Quiz{}, err
	}

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return domain.Quiz{}, err
		}
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Questions != nil {
		questions, err := normalizeQuestions(*patch.Questions, s.newID)
		if err != nil {
			return domain.Quiz{}, err
		}
		patch.Questions = &questions
	}

	updated, err := s.quizzes.UpdateQuiz(ctx, current.ID, patch)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	s.invalidate(ctx, current.JoinCode)
	return updated, nil
}

// Delete removes the quiz and its embedded score history. Only the owner may delete.
func (s *QuizService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	quiz, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.quizzes.DeleteQuiz(ctx, quiz.ID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.invalidate(ctx, quiz.JoinCode)
	return nil
}

// SubmitScore records the participant's score, overwriting an earlier one.
func (s *QuizService) SubmitScore(ctx context.Context, code, userID string, score *int) (int, error) {
	code = normalizeJoinCode(code)
	userID = strings.TrimSpace(userID)
	if code == "" || userID == "" || score == nil {
		return 0, domain.NewValidationError("", "code, userId and score are required")
	}

	quiz, err := s.quizzes.GetQuizByJoinCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if *score < 0 || *score > len(quiz.Questions) {
		return 0, domain.NewValidationError("score", fmt.Sprintf("must be between 0 and %d", len(quiz.Questions)))
	}

	participant := domain.Participant{
		UserID:      userID,
		Score:       *score,
		CompletedAt: s.now().UTC(),
	}
	if err := s.quizzes.UpsertParticipant(ctx, quiz.ID, participant); err != nil {
		return 0, fmt.Errorf("save score: %w", err)
	}
	s.invalidate(ctx, quiz.JoinCode)
	return *score, nil
}

// GetScores returns the participant list to the quiz owner.
func (s *QuizService) GetScores(ctx context.Context, caller domain.Identity, id string) ([]domain.Participant, error) {
	quiz, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if quiz.Participants == nil {
		return []domain.Participant{}, nil
	}
	return quiz.Participants, nil
}

func (s *QuizService) owned(ctx context.Context, caller domain.Identity, id string) (domain.Quiz, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.OwnerID == "" || quiz.OwnerID != caller.ID {
		return domain.Quiz{}, domain.ErrForbidden
	}
	return quiz, nil
}

// invalidate is best effort: the cache entry expires on its own TTL anyway.
func (s *QuizService) invalidate(ctx context.Context, code string) {
	if s.cache == nil || code == "" {
		return
	}
	_ = s.cache.Invalidate(ctx, code)
}

func normalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
