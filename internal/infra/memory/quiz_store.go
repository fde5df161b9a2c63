package memory

import (
	"context"
	"sort"
	"sync"

	"quizmaker-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizRepository. The join
// code index doubles as the uniqueness constraint.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*domain.Quiz
	byCode  map[string]string
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		quizzes: make(map[string]*domain.Quiz),
		byCode:  make(map[string]string),
	}
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[quiz.JoinCode]; ok {
		return domain.ErrJoinCodeTaken
	}
	stored := cloneQuiz(quiz)
	if stored.Participants == nil {
		stored.Participants = []domain.Participant{}
	}
	s.quizzes[quiz.ID] = &stored
	s.byCode[quiz.JoinCode] = quiz.ID
	return nil
}

func (s *QuizStore) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(*quiz), nil
}

func (s *QuizStore) GetQuizByJoinCode(_ context.Context, code string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(*s.quizzes[id]), nil
}

func (s *QuizStore) ExistsJoinCode(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byCode[code]
	return ok, nil
}

func (s *QuizStore) ListQuizzesByOwner(_ context.Context, ownerID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.OwnerID == ownerID {
			out = append(out, cloneQuiz(*quiz))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, id string, patch domain.QuizPatch) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if patch.Title != nil {
		quiz.Title = *patch.Title
	}
	if patch.GradeLevel != nil {
		quiz.GradeLevel = *patch.GradeLevel
	}
	if patch.Description != nil {
		quiz.Description = *patch.Description
	}
	if patch.Questions != nil {
		quiz.Questions = cloneQuestions(*patch.Questions)
	}
	return cloneQuiz(*quiz), nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.byCode, quiz.JoinCode)
	delete(s.quizzes, id)
	return nil
}

// UpsertParticipant updates the entry in place under the write lock, so
// concurrent submissions for the same quiz never drop each other.
func (s *QuizStore) UpsertParticipant(_ context.Context, quizID string, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	for i := range quiz.Participants {
		if quiz.Participants[i].UserID == participant.UserID {
			quiz.Participants[i].Score = participant.Score
			quiz.Participants[i].CompletedAt = participant.CompletedAt
			return nil
		}
	}
	quiz.Participants = append(quiz.Participants, participant)
	return nil
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	q.Questions = cloneQuestions(q.Questions)
	if q.Participants != nil {
		participants := make([]domain.Participant, len(q.Participants))
		copy(participants, q.Participants)
		q.Participants = participants
	}
	return q
}

func cloneQuestions(in []domain.Question) []domain.Question {
	if in == nil {
		return nil
	}
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Options = append([]domain.Option(nil), q.Options...)
		out[i] = q
	}
	return out
}
