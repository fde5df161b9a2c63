package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"quizmaker-service/internal/auth"
	"quizmaker-service/internal/domain"
	"quizmaker-service/internal/infra/memory"
)

func newAuthService(t *testing.T) (*AuthService, *memory.UserStore, *auth.Issuer) {
	t.Helper()
	users := memory.NewUserStore()
	tokens := auth.NewIssuer("test-secret", time.Hour)
	return NewAuthService(users, tokens, bcrypt.MinCost), users, tokens
}

func aliceInput() RegisterInput {
	return RegisterInput{
		FirstName: "Alice",
		LastName:  "Liddell",
		Username:  "alice",
		Email:     " Alice@Example.com ",
		Password:  "pa55word",
	}
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	service, users, tokens := newAuthService(t)

	session, err := service.Register(ctx, aliceInput())
	require.NoError(t, err)
	assert.Empty(t, session.User.PasswordHash)
	assert.Equal(t, "alice@example.com", session.User.Email)

	id, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id.ID)
	assert.Equal(t, "alice", id.Username)

	stored, err := users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pa55word", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pa55word")))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAuthService(t)
	_, err := service.Register(ctx, aliceInput())
	require.NoError(t, err)

	sameEmail := aliceInput()
	sameEmail.Username = "alice2"
	_, err = service.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	sameName := aliceInput()
	sameName.Email = "other@example.com"
	_, err = service.Register(ctx, sameName)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	service, _, _ := newAuthService(t)

	missing := aliceInput()
	missing.Password = ""
	badEmail := aliceInput()
	badEmail.Email = "not-an-email"
	tooLong := aliceInput()
	tooLong.Password = strings.Repeat("x", 80)

	for name, in := range map[string]RegisterInput{"missing password": missing, "bad email": badEmail, "long password": tooLong} {
		_, err := service.Register(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAuthService(t)
	registered, err := service.Register(ctx, aliceInput())
	require.NoError(t, err)

	session, err := service.Login(ctx, "ALICE@example.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.NotEmpty(t, session.Token)

	_, err = service.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = service.Login(ctx, "nobody@example.com", "pa55word")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = service.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAuthService(t)
	registered, err := service.Register(ctx, aliceInput())
	require.NoError(t, err)

	user, err := service.Profile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Empty(t, user.PasswordHash)

	_, err = service.Profile(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
