package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizmaker-service/internal/domain"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// Session is returned by register and login.
type Session struct {
	Token string
	User  domain.User
}

// AuthService handles registration, login and profile lookups.
type AuthService struct {
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

func NewAuthService(users UserRepository, tokens TokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Register creates the user and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return Session{}, domain.NewValidationError("", "username, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return Session{}, domain.NewValidationError("email", "is not a valid address")
	}

	exists, err := s.users.ExistsUser(ctx, in.Email, in.Username)
	if err != nil {
		return Session{}, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return Session{}, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Session{}, domain.NewValidationError("password", "is too long")
		}
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           s.newID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	return s.session(user)
}

// Login checks the password against the stored hash and signs the user in.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	return s.session(user)
}

// Profile returns the user without credentials.
func (s *AuthService) Profile(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	user.PasswordHash = ""
	return Session{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
