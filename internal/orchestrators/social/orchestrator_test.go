package social_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/leaderboard"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/worldchat"
	"github.com/KirkDiggler/rpg-narrator/internal/testutils"
)

type countingRecorder struct{ posts int }

func (r *countingRecorder) ChatPosted() { r.posts++ }

type SocialOrchestratorTestSuite struct {
	suite.Suite
	clock    *clock.Fake
	saves    saves.Repository
	accounts accounts.Repository
	recorder *countingRecorder
	svc      social.Service
	cleanup  func()
	ctx      context.Context
}

func TestSocialOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(SocialOrchestratorTestSuite))
}

func (s *SocialOrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	s.recorder = &countingRecorder{}

	db := testutils.CreateTestDB(s.T(), saves.Migrate, accounts.Migrate)
	var err error
	s.saves, err = saves.NewGorm(&saves.Config{DB: db, ServerID: testutils.TestServerID, Clock: s.clock})
	s.Require().NoError(err)
	s.accounts, err = accounts.NewGorm(&accounts.Config{
		DB:       db,
		ServerID: testutils.TestServerID,
		Admins:   []string{"veldora"},
	})
	s.Require().NoError(err)

	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	keyspace := redisclient.Keyspace(testutils.TestServerID)
	chat, err := worldchat.NewRedis(&worldchat.RedisConfig{Client: client, Keyspace: keyspace})
	s.Require().NoError(err)
	board, err := leaderboard.NewRedis(&leaderboard.RedisConfig{Client: client, Keyspace: keyspace})
	s.Require().NoError(err)

	gate, err := authz.New(&authz.Config{Accounts: s.accounts})
	s.Require().NoError(err)

	s.svc, err = social.NewOrchestrator(&social.Config{
		Chat:        chat,
		Leaderboard: board,
		Saves:       s.saves,
		Accounts:    s.accounts,
		Authz:       gate,
		IDGenerator: idgen.NewSequential("chat"),
		Clock:       s.clock,
		ServerID:    testutils.TestServerID,
		Recorder:    s.recorder,
	})
	s.Require().NoError(err)
}

func (s *SocialOrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *SocialOrchestratorTestSuite) player(name string, status entities.CharacterStatus) {
	_, err := s.accounts.Ensure(s.ctx, accounts.EnsureInput{Username: name})
	s.Require().NoError(err)
	_, err = s.saves.Put(s.ctx, saves.PutInput{Save: &entities.SaveData{
		Username:  name,
		Character: entities.Character{Name: name, Status: status},
	}})
	s.Require().NoError(err)
}

func (s *SocialOrchestratorTestSuite) TestPostAndListChat() {
	_, err := s.svc.PostChat(s.ctx, &social.PostChatInput{Caller: "rimuru", Text: "  hello tempest  "})
	s.Require().NoError(err)
	_, err = s.svc.PostChat(s.ctx, &social.PostChatInput{Caller: "veldora", Text: "kwahaha"})
	s.Require().NoError(err)

	out, err := s.svc.ListChat(s.ctx, &social.ListChatInput{Caller: "milim"})
	s.Require().NoError(err)
	s.Require().Len(out.Messages, 2)
	s.Equal("hello tempest", out.Messages[0].Text)
	s.False(out.Messages[0].IsAdmin)
	s.Equal("veldora", out.Messages[1].Username)
	s.True(out.Messages[1].IsAdmin)
	s.Equal(2, s.recorder.posts)
}

func (s *SocialOrchestratorTestSuite) TestPostChatRejections() {
	_, err := s.svc.PostChat(s.ctx, &social.PostChatInput{Caller: "rimuru", Text: "   "})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.PostChat(s.ctx, &social.PostChatInput{Caller: "rimuru", Text: strings.Repeat("a", 501)})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.PostChat(s.ctx, &social.PostChatInput{Text: "who am i"})
	s.True(errors.IsUnauthenticated(err))

	_, err = s.accounts.Ensure(s.ctx, accounts.EnsureInput{Username: "hinata"})
	s.Require().NoError(err)
	_, err = s.accounts.SetBanned(s.ctx, accounts.SetBannedInput{Username: "hinata", Banned: true})
	s.Require().NoError(err)
	_, err = s.svc.PostChat(s.ctx, &social.PostChatInput{Caller: "hinata", Text: "let me in"})
	s.True(errors.IsPermissionDenied(err))

	s.Zero(s.recorder.posts)
}

func (s *SocialOrchestratorTestSuite) TestSubscribeChat() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sub, err := s.svc.SubscribeChat(ctx, &social.SubscribeChatInput{Caller: "milim"})
	s.Require().NoError(err)
	defer func() { _ = sub.Close() }()

	_, err = s.svc.PostChat(s.ctx, &social.PostChatInput{Caller: "rimuru", Text: "anyone there?"})
	s.Require().NoError(err)

	select {
	case msg := <-sub.Messages:
		s.Equal("anyone there?", msg.Text)
	case <-time.After(2 * time.Second):
		s.Fail("no message delivered")
	}
}

func (s *SocialOrchestratorTestSuite) TestLeaderboardRanking() {
	// (80 + 50) * 10 + 2 * 1000 = 3300
	s.player("rimuru", entities.CharacterStatus{HP: 80, MaxHP: 100, MaxMP: 50, Skills: []string{"Predator", "Great Sage"}})
	// (200 + 100) * 10 + 0 = 3000
	s.player("milim", entities.CharacterStatus{HP: 200, MaxHP: 200, MaxMP: 100})
	s.player("shion", entities.CharacterStatus{
		HP: entities.GodSentinel, MaxHP: entities.GodSentinel, IsGodMode: true,
		Inventory: []string{entities.InfinityTokenName},
	})
	s.player("veldora", entities.CharacterStatus{HP: 100000, MaxHP: 100000})
	s.player("hinata", entities.CharacterStatus{HP: 5000, MaxHP: 5000})
	_, err := s.accounts.SetBanned(s.ctx, accounts.SetBannedInput{Username: "hinata", Banned: true})
	s.Require().NoError(err)

	out, err := s.svc.Leaderboard(s.ctx, &social.LeaderboardInput{Caller: "rimuru"})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 3)

	s.Equal("shion", out.Entries[0].Username)
	s.True(out.Entries[0].GodMode)
	s.Zero(out.Entries[0].Power)

	s.Equal("rimuru", out.Entries[1].Username)
	s.Equal(int64(3300), out.Entries[1].Power)
	s.Equal("milim", out.Entries[2].Username)
	s.Equal(3, out.Entries[2].Rank)

	s.Require().NotNil(out.Caller)
	s.Equal(2, out.Caller.Rank)
}

func (s *SocialOrchestratorTestSuite) TestLeaderboardServesCachedRanking() {
	s.player("rimuru", entities.CharacterStatus{HP: 10, MaxHP: 10})

	out, err := s.svc.Leaderboard(s.ctx, &social.LeaderboardInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 1)
	s.Nil(out.Caller)

	s.player("milim", entities.CharacterStatus{HP: 200, MaxHP: 200})

	out, err = s.svc.Leaderboard(s.ctx, &social.LeaderboardInput{})
	s.Require().NoError(err)
	s.Len(out.Entries, 1)

	s.clock.Advance(social.DefaultRefreshInterval)

	out, err = s.svc.Leaderboard(s.ctx, &social.LeaderboardInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)
	s.Equal("milim", out.Entries[0].Username)
}

func (s *SocialOrchestratorTestSuite) TestLeaderboardUnrankedCaller() {
	s.player("rimuru", entities.CharacterStatus{HP: 10, MaxHP: 10})

	out, err := s.svc.Leaderboard(s.ctx, &social.LeaderboardInput{Caller: "veldora"})
	s.Require().NoError(err)
	s.Len(out.Entries, 1)
	s.Nil(out.Caller)
}
