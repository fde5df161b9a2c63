package app

import (
	"context"

	"quizmaker-service/internal/domain"
)

// UserRepository abstracts the credential store (in-memory, Postgres).
type UserRepository interface {
	// CreateUser returns domain.ErrUserExists when the email or username is taken.
	CreateUser(ctx context.Context, user domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsUser(ctx context.Context, email, username string) (bool, error)
}

// QuizRepository persists quizzes and their participant scores.
type QuizRepository interface {
	// CreateQuiz returns domain.ErrJoinCodeTaken when the join code is not unique.
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error)
	ExistsJoinCode(ctx context.Context, code string) (bool, error)
	// ListQuizzesByOwner returns the owner's quizzes, newest first.
	ListQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
	UpdateQuiz(ctx context.Context, id string, patch domain.QuizPatch) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	// UpsertParticipant atomically inserts or overwrites the (quiz, user) score.
	UpsertParticipant(ctx context.Context, quizID string, participant domain.Participant) error
}

// QuizCache serves public join-code lookups (memory, Redis).
type QuizCache interface {
	GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error)
	Invalidate(ctx context.Context, code string) error
}

// TextGenerator sends a prompt to an external text-generation model.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
