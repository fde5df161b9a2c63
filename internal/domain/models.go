package domain

import "time"

// Identity is the caller resolved from an access token.
type Identity struct {
	ID       string
	Username string
}

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           string    `json:"_id"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID        string `json:"_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models an MCQ question with 2 to 4 options and at most one correct option.
type Question struct {
	ID      string   `json:"_id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Participant is the score record of one user on one quiz.
type Participant struct {
	UserID      string    `json:"user"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// Quiz is a published quiz. JoinCode and OwnerID are set once at creation.
type Quiz struct {
	ID           string        `json:"_id"`
	Title        string        `json:"title"`
	GradeLevel   string        `json:"gradeLevel"`
	Description  string        `json:"description"`
	JoinCode     string        `json:"joinCode"`
	OwnerID      string        `json:"user"`
	Questions    []Question    `json:"questions"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// QuizInput carries the authored fields of a new quiz.
type QuizInput struct {
	Title       string
	GradeLevel  string
	Description string
	Questions   []Question
}

// QuizPatch is a partial update; nil fields are left untouched.
type QuizPatch struct {
	Title       *string
	GradeLevel  *string
	Description *string
	Questions   *[]Question
}

// GeneratedQuiz is the parsed reply of the text-generation model.
type GeneratedQuiz struct {
	QuizTitle string              `json:"quizTitle"`
	Questions []GeneratedQuestion `json:"questions"`
}

// GeneratedQuestion is one generated question with its choices.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correctAnswer"`
}
