package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByToken(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateToken(ctx context.Context, id int64, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func newAuthService(users *MockUserRepository) *services.AuthService {
	return services.NewAuthService(users, fixedClock{now: monday}, bcrypt.MinCost)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a user with normalized email", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users)

		users.On("GetByEmail", mock.Anything, "ama@example.com").
			Return(nil, apperrors.NewNotFoundError("user not found"))
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Email == "ama@example.com" &&
				u.PasswordHash != "secret1" &&
				len(u.Roles) == 1 && u.Roles[0] == entities.RoleUser
		})).Return(nil)

		user, err := svc.Register(context.Background(), "  Ama@Example.COM ", "secret1")

		require.NoError(t, err)
		assert.Equal(t, "ama@example.com", user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
		users.AssertExpectations(t)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc := newAuthService(new(MockUserRepository))

		_, err := svc.Register(context.Background(), "ama@example.com", "short")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		svc := newAuthService(new(MockUserRepository))

		_, err := svc.Register(context.Background(), "not-an-email", "secret1")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users)

		users.On("GetByEmail", mock.Anything, "ama@example.com").
			Return(&entities.User{ID: 1, Email: "ama@example.com"}, nil)

		_, err := svc.Register(context.Background(), "ama@example.com", "secret1")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &entities.User{ID: 5, Email: "ama@example.com", PasswordHash: string(hash)}

	t.Run("issues a fresh token on success", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users)

		users.On("GetByEmail", mock.Anything, "ama@example.com").Return(stored, nil)
		users.On("UpdateToken", mock.Anything, int64(5), mock.MatchedBy(func(tok string) bool {
			return len(tok) == 64
		})).Return(nil)

		user, token, err := svc.Login(context.Background(), "Ama@Example.com", "secret1")

		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.Equal(t, token, user.APIToken)
		users.AssertExpectations(t)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users)

		users.On("GetByEmail", mock.Anything, "ama@example.com").Return(stored, nil)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, apperrors.NewNotFoundError("user not found"))

		_, _, badPass := svc.Login(context.Background(), "ama@example.com", "wrong")
		_, _, badEmail := svc.Login(context.Background(), "ghost@example.com", "secret1")

		require.Error(t, badPass)
		require.Error(t, badEmail)
		assert.Equal(t, badPass.Error(), badEmail.Error())
		assert.True(t, apperrors.IsType(badPass, apperrors.ErrorTypeUnauthorized))
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("resolves a valid token", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users)

		users.On("GetByToken", mock.Anything, "tok").
			Return(&entities.User{ID: 5, Email: "ama@example.com"}, nil)

		user, err := svc.Authenticate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, int64(5), user.ID)
	})

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newAuthService(users)

		users.On("GetByToken", mock.Anything, "stale").
			Return(nil, apperrors.NewNotFoundError("user not found"))

		_, err := svc.Authenticate(context.Background(), "stale")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("empty token is unauthorized", func(t *testing.T) {
		svc := newAuthService(new(MockUserRepository))

		_, err := svc.Authenticate(context.Background(), "")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}
