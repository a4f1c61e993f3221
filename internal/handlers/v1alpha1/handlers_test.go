package v1alpha1_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle"
	battlemock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/mail"
	mailmock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/mail/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative"
	narrativemock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
	socialmock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social/mock"
)

type HandlersTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockBattle    *battlemock.MockService
	mockNarrative *narrativemock.MockService
	mockMail      *mailmock.MockService
	mockSocial    *socialmock.MockService

	arena      *v1alpha1.ArenaHandler
	narrativeH *v1alpha1.NarrativeHandler
	mailH      *v1alpha1.MailHandler
	socialH    *v1alpha1.SocialHandler
	ctx        context.Context
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockBattle = battlemock.NewMockService(s.ctrl)
	s.mockNarrative = narrativemock.NewMockService(s.ctrl)
	s.mockMail = mailmock.NewMockService(s.ctrl)
	s.mockSocial = socialmock.NewMockService(s.ctrl)
	s.ctx = v1alpha1.WithCaller(context.Background(), "rimuru")

	var err error
	s.arena, err = v1alpha1.NewArenaHandler(&v1alpha1.ArenaHandlerConfig{BattleService: s.mockBattle})
	s.Require().NoError(err)
	s.narrativeH, err = v1alpha1.NewNarrativeHandler(&v1alpha1.NarrativeHandlerConfig{NarrativeService: s.mockNarrative})
	s.Require().NoError(err)
	s.mailH, err = v1alpha1.NewMailHandler(&v1alpha1.MailHandlerConfig{MailService: s.mockMail})
	s.Require().NoError(err)
	s.socialH, err = v1alpha1.NewSocialHandler(&v1alpha1.SocialHandlerConfig{SocialService: s.mockSocial})
	s.Require().NoError(err)
}

func (s *HandlersTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlersTestSuite) TestConstructorsRequireServices() {
	_, err := v1alpha1.NewArenaHandler(&v1alpha1.ArenaHandlerConfig{})
	s.Error(err)
	_, err = v1alpha1.NewNarrativeHandler(nil)
	s.Error(err)
	_, err = v1alpha1.NewMailHandler(&v1alpha1.MailHandlerConfig{})
	s.Error(err)
	_, err = v1alpha1.NewSocialHandler(&v1alpha1.SocialHandlerConfig{})
	s.Error(err)
}

func (s *HandlersTestSuite) TestMissingCallerIsUnauthenticated() {
	_, err := s.arena.Current(context.Background(), &v1alpha1.CurrentRequest{})
	s.Equal(codes.Unauthenticated, status.Code(err))

	_, err = s.narrativeH.GetState(context.Background(), &v1alpha1.GameRequest{})
	s.Equal(codes.Unauthenticated, status.Code(err))
}

func (s *HandlersTestSuite) TestChallenge() {
	rec := &entities.BattleRecord{ID: "battle_1", Challenger: "rimuru", Target: "milim"}
	s.mockBattle.EXPECT().
		Challenge(s.ctx, &battle.ChallengeInput{Caller: "rimuru", Target: "milim"}).
		Return(&battle.BattleOutput{Record: rec}, nil)

	resp, err := s.arena.Challenge(s.ctx, &v1alpha1.ChallengeRequest{Target: "milim"})
	s.Require().NoError(err)
	s.Equal(rec, resp.Battle)
}

func (s *HandlersTestSuite) TestChallengeRequiresTarget() {
	_, err := s.arena.Challenge(s.ctx, &v1alpha1.ChallengeRequest{})
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlersTestSuite) TestActRejectionKeepsReason() {
	s.mockBattle.EXPECT().
		Act(s.ctx, &battle.ActInput{Caller: "rimuru", BattleID: "battle_1", Skill: "Predator"}).
		Return(nil, errors.NotYourTurn("rimuru"))

	_, err := s.arena.Act(s.ctx, &v1alpha1.ActRequest{BattleID: "battle_1", Skill: "Predator"})
	s.Equal(codes.FailedPrecondition, status.Code(err))
	s.True(errors.HasReason(errors.FromGRPCError(err), errors.ReasonNotYourTurn))
}

func (s *HandlersTestSuite) TestActRequiresBattleID() {
	_, err := s.arena.Act(s.ctx, &v1alpha1.ActRequest{Skill: "Predator"})
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlersTestSuite) TestSurrenderReportsPenalty() {
	rec := &entities.BattleRecord{ID: "battle_1", Status: entities.BattleStatusFinished, Winner: "milim"}
	s.mockBattle.EXPECT().
		Surrender(s.ctx, &battle.BattleInput{Caller: "rimuru", BattleID: "battle_1"}).
		Return(&battle.SurrenderOutput{Record: rec, PenaltyApplied: true}, nil)

	resp, err := s.arena.Surrender(s.ctx, &v1alpha1.BattleRequest{BattleID: "battle_1"})
	s.Require().NoError(err)
	s.True(resp.PenaltyApplied)
	s.Equal("milim", resp.Battle.Winner)
}

func (s *HandlersTestSuite) TestAdminSetHP() {
	s.mockBattle.EXPECT().
		AdminSetHP(s.ctx, &battle.AdminSetHPInput{Caller: "rimuru", BattleID: "battle_1", P1HP: 5, P2HP: 9}).
		Return(nil, errors.PermissionDenied("admin only"))

	_, err := s.arena.AdminSetHP(s.ctx, &v1alpha1.AdminSetHPRequest{BattleID: "battle_1", P1HP: 5, P2HP: 9})
	s.Equal(codes.PermissionDenied, status.Code(err))
}

func (s *HandlersTestSuite) TestSubmitTurn() {
	s.mockNarrative.EXPECT().
		Submit(s.ctx, &narrative.SubmitInput{Username: "rimuru", Message: "I eat the ore"}).
		Return(&narrative.TurnOutput{
			State: &narrative.GameState{Character: entities.Character{Name: "Rimuru"}},
			Reply: "You absorb the Magic Ore.",
			Notices: []entities.Notice{
				{Type: entities.NoticeSystem, Text: "Saved"},
			},
		}, nil)

	resp, err := s.narrativeH.Submit(s.ctx, &v1alpha1.SubmitRequest{Message: "I eat the ore"})
	s.Require().NoError(err)
	s.Equal("You absorb the Magic Ore.", resp.Reply)
	s.Equal("Rimuru", resp.State.Character.Name)
	s.Len(resp.Notices, 1)
}

func (s *HandlersTestSuite) TestStartGame() {
	s.mockNarrative.EXPECT().
		StartGame(s.ctx, &narrative.StartGameInput{
			Username:    "rimuru",
			Name:        "Rimuru",
			Race:        "Slime",
			UniqueSkill: "Predator",
			Difficulty:  narrative.DifficultyNormal,
		}).
		Return(&narrative.StartGameOutput{
			State:    &narrative.GameState{Character: entities.Character{Name: "Rimuru"}},
			Degraded: true,
		}, nil)

	resp, err := s.narrativeH.StartGame(s.ctx, &v1alpha1.StartGameRequest{
		Name:        "Rimuru",
		Race:        "Slime",
		UniqueSkill: "Predator",
		Difficulty:  narrative.DifficultyNormal,
	})
	s.Require().NoError(err)
	s.True(resp.Degraded)
}

func (s *HandlersTestSuite) TestClaimMail() {
	s.mockMail.EXPECT().
		Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: "mail_1"}).
		Return(&mail.ClaimOutput{
			Mail:   &entities.Mail{ID: "mail_1"},
			Status: entities.CharacterStatus{HP: 80},
		}, nil)

	resp, err := s.mailH.Claim(s.ctx, &v1alpha1.MailRequest{MailID: "mail_1"})
	s.Require().NoError(err)
	s.Equal(80, resp.Status.HP)
}

func (s *HandlersTestSuite) TestClaimMailAlreadyClaimed() {
	s.mockMail.EXPECT().
		Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: "mail_1"}).
		Return(nil, errors.AlreadyClaimed("mail_1"))

	_, err := s.mailH.Claim(s.ctx, &v1alpha1.MailRequest{MailID: "mail_1"})
	s.True(errors.HasReason(errors.FromGRPCError(err), errors.ReasonAlreadyClaimed))
}

func (s *HandlersTestSuite) TestMailRequiresID() {
	_, err := s.mailH.Delete(s.ctx, &v1alpha1.MailRequest{})
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlersTestSuite) TestLeaderboardPassesCaller() {
	s.mockSocial.EXPECT().
		Leaderboard(s.ctx, &social.LeaderboardInput{Caller: "rimuru", Limit: 10}).
		Return(&social.LeaderboardOutput{
			Entries: []*entities.LeaderboardEntry{{Rank: 1, Username: "shion"}},
			Caller:  &entities.LeaderboardEntry{Rank: 2, Username: "rimuru"},
		}, nil)

	resp, err := s.socialH.Leaderboard(s.ctx, &v1alpha1.LeaderboardRequest{Limit: 10})
	s.Require().NoError(err)
	s.Len(resp.Entries, 1)
	s.Equal(2, resp.Caller.Rank)
}
