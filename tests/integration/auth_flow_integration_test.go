//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/oseikb/bookline/internal/adapters/database"
	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/providers"
	"github.com/oseikb/bookline/internal/infrastructure/clients/postgres"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

type AuthFlowIntegrationTestSuite struct {
	suite.Suite
	client  *postgres.Client
	db      *sql.DB
	service *services.AuthService
}

func (suite *AuthFlowIntegrationTestSuite) SetupSuite() {
	if os.Getenv("TEST_DB_HOST") == "" {
		suite.T().Skip("Skipping integration test: TEST_DB_HOST not set")
	}

	client := newTestPostgresClient(suite.T())
	suite.client = client
	suite.db = client.DB()

	runMigrations(suite.T(), suite.db, "../../migrations/001_initial_schema.sql")

	userRepo := database.NewUserAdapter(client)
	suite.service = services.NewAuthService(userRepo, providers.SystemClock{}, bcrypt.MinCost)
}

func (suite *AuthFlowIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.client.Close()
	}
}

func (suite *AuthFlowIntegrationTestSuite) SetupTest() {
	_, err := suite.db.Exec("DELETE FROM users")
	require.NoError(suite.T(), err)
}

func (suite *AuthFlowIntegrationTestSuite) TestRegisterLoginAuthenticate() {
	ctx := context.Background()

	user, err := suite.service.Register(ctx, "Ama@Example.com", "secret1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ama@example.com", user.Email)
	assert.Equal(suite.T(), []string{entities.RoleUser}, user.Roles)

	loggedIn, token, err := suite.service.Login(ctx, "ama@example.com", "secret1")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), token, 64)
	assert.Equal(suite.T(), user.ID, loggedIn.ID)

	authed, err := suite.service.Authenticate(ctx, token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, authed.ID)
}

func (suite *AuthFlowIntegrationTestSuite) TestLoginRotatesToken() {
	ctx := context.Background()

	_, err := suite.service.Register(ctx, "ama@example.com", "secret1")
	require.NoError(suite.T(), err)

	_, first, err := suite.service.Login(ctx, "ama@example.com", "secret1")
	require.NoError(suite.T(), err)
	_, second, err := suite.service.Login(ctx, "ama@example.com", "secret1")
	require.NoError(suite.T(), err)
	require.NotEqual(suite.T(), first, second)

	// The old token stops working once a new one is issued.
	_, err = suite.service.Authenticate(ctx, first)
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	_, err = suite.service.Authenticate(ctx, second)
	require.NoError(suite.T(), err)
}

func (suite *AuthFlowIntegrationTestSuite) TestDuplicateEmailIsConflict() {
	ctx := context.Background()

	_, err := suite.service.Register(ctx, "ama@example.com", "secret1")
	require.NoError(suite.T(), err)

	_, err = suite.service.Register(ctx, "AMA@example.com", "another1")
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func (suite *AuthFlowIntegrationTestSuite) TestWrongPasswordIsUnauthorized() {
	ctx := context.Background()

	_, err := suite.service.Register(ctx, "ama@example.com", "secret1")
	require.NoError(suite.T(), err)

	_, _, err = suite.service.Login(ctx, "ama@example.com", "wrong")
	require.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestAuthFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	suite.Run(t, new(AuthFlowIntegrationTestSuite))
}
