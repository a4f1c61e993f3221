package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	accountsmock "github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/testutils"
)

type AuthzTestSuite struct {
	suite.Suite
	accounts accounts.Repository
	authz    authz.Authorizer
	ctx      context.Context
}

func TestAuthzSuite(t *testing.T) {
	suite.Run(t, new(AuthzTestSuite))
}

func (s *AuthzTestSuite) SetupTest() {
	db := testutils.CreateTestDB(s.T(), accounts.Migrate)
	repo, err := accounts.NewGorm(&accounts.Config{
		DB:       db,
		ServerID: testutils.TestServerID,
		Admins:   []string{"veldora"},
	})
	s.Require().NoError(err)
	s.accounts = repo

	a, err := authz.New(&authz.Config{Accounts: repo})
	s.Require().NoError(err)
	s.authz = a
	s.ctx = context.Background()
}

func (s *AuthzTestSuite) TestRequirePlayerRegisters() {
	account, err := s.authz.RequirePlayer(s.ctx, "rimuru")
	s.Require().NoError(err)
	s.Equal("rimuru", account.Username)

	_, err = s.accounts.Get(s.ctx, accounts.GetInput{Username: "rimuru"})
	s.NoError(err)
}

func (s *AuthzTestSuite) TestRequirePlayerAnonymous() {
	_, err := s.authz.RequirePlayer(s.ctx, "")
	s.True(errors.IsUnauthenticated(err))
}

func (s *AuthzTestSuite) TestBannedRejected() {
	_, err := s.authz.RequirePlayer(s.ctx, "milim")
	s.Require().NoError(err)
	_, err = s.accounts.SetBanned(s.ctx, accounts.SetBannedInput{Username: "milim", Banned: true})
	s.Require().NoError(err)

	_, err = s.authz.RequirePlayer(s.ctx, "milim")
	s.True(errors.IsPermissionDenied(err))
}

func (s *AuthzTestSuite) TestRequireAdmin() {
	_, err := s.authz.RequireAdmin(s.ctx, "rimuru")
	s.True(errors.IsPermissionDenied(err))

	account, err := s.authz.RequireAdmin(s.ctx, "veldora")
	s.Require().NoError(err)
	s.True(account.IsAdmin())
}

func TestRequirePlayerStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := accountsmock.NewMockRepository(ctrl)
	gate, err := authz.New(&authz.Config{Accounts: repo})
	require.NoError(t, err)

	repo.EXPECT().Ensure(gomock.Any(), accounts.EnsureInput{Username: "rimuru"}).
		Return(nil, errors.Unavailable("database is down"))

	_, err = gate.RequireAdmin(context.Background(), "rimuru")
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))
	assert.Equal(t, "service unavailable", errors.PublicMessage(err))
}
