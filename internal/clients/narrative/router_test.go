package narrative_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-narrator/internal/clients/narrative"
	narrativemock "github.com/KirkDiggler/rpg-narrator/internal/clients/narrative/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
)

const validStatus = `{"hp":80,"maxHp":100,"mp":40,"maxMp":50,"skills":["Predator"],"equippedSkills":[],` +
	`"activeEffects":[],"inventory":[],"quests":[],"level":2,"evolutionStage":"Slime","difficulty":"NORMAL"}`

type RouterTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	primary   *narrativemock.MockBackend
	secondary *narrativemock.MockBackend
	clock     *clock.Fake
	router    narrative.Client
	ctx       context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.primary = narrativemock.NewMockBackend(s.ctrl)
	s.secondary = narrativemock.NewMockBackend(s.ctrl)
	s.primary.EXPECT().Name().Return("primary").AnyTimes()
	s.secondary.EXPECT().Name().Return("secondary").AnyTimes()
	s.clock = clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	router, err := narrative.NewRouter(&narrative.RouterConfig{
		Tiers:    []narrative.Backend{s.primary, s.secondary},
		Cooldown: time.Minute,
		Clock:    s.clock,
	})
	s.Require().NoError(err)
	s.router = router
}

func (s *RouterTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RouterTestSuite) generate() *narrative.GenerateOutput {
	out, err := s.router.Generate(s.ctx, &narrative.GenerateInput{
		Character: entities.Character{Name: "Rimuru", Race: "Slime"},
		Message:   "I look around",
	})
	s.Require().NoError(err)
	return out
}

func (s *RouterTestSuite) TestNewRouterValidation() {
	_, err := narrative.NewRouter(nil)
	s.Error(err)

	_, err = narrative.NewRouter(&narrative.RouterConfig{})
	s.Require().Error(err)
	s.Contains(err.Error(), "tiers")

	_, err = narrative.NewRouter(&narrative.RouterConfig{Tiers: []narrative.Backend{nil}})
	s.Error(err)
}

func (s *RouterTestSuite) TestGenerateUsesPrimary() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *narrative.Request) (string, error) {
			s.Equal("generate", req.Operation)
			s.Contains(req.System, "Rimuru")
			s.Require().NotEmpty(req.Messages)
			last := req.Messages[len(req.Messages)-1]
			s.Equal(entities.ChatRoleUser, last.Role)
			s.Equal("I look around", last.Text)
			return "A cave stretches before you.", nil
		})

	out := s.generate()
	s.Equal("A cave stretches before you.", out.Text)
	s.Equal("primary", out.Tier)
	s.False(out.Degraded)
	s.Equal("primary", s.router.ActiveTier())
}

func (s *RouterTestSuite) TestGenerateSendsAtMostTwentyTurns() {
	history := make([]entities.ChatTurn, 30)
	for i := range history {
		history[i] = entities.ChatTurn{Role: entities.ChatRoleModel, Text: "turn"}
	}
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *narrative.Request) (string, error) {
			s.Len(req.Messages, 21)
			return "ok", nil
		})

	_, err := s.router.Generate(s.ctx, &narrative.GenerateInput{History: history, Message: "go"})
	s.NoError(err)
}

func (s *RouterTestSuite) TestFailureFallsThroughAndSticks() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.Unavailable("quota"))
	s.secondary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("from secondary", nil).Times(2)

	out := s.generate()
	s.Equal("from secondary", out.Text)
	s.Equal("secondary", out.Tier)

	// still inside the cooldown: the primary is skipped
	s.clock.Advance(30 * time.Second)
	out = s.generate()
	s.Equal("secondary", out.Tier)
}

func (s *RouterTestSuite) TestPrimaryRetriedAfterCooldown() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.Unavailable("quota"))
	s.secondary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("from secondary", nil)
	s.generate()
	s.Equal("secondary", s.router.ActiveTier())

	s.clock.Advance(time.Minute)
	s.Equal("primary", s.router.ActiveTier())

	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("back again", nil)
	out := s.generate()
	s.Equal("primary", out.Tier)
	s.Equal("back again", out.Text)
}

func (s *RouterTestSuite) TestAllTiersFailedDegrades() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.Unavailable("down"))
	s.secondary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.Unavailable("down"))

	out := s.generate()
	s.True(out.Degraded)
	s.Equal(narrative.FallbackText, out.Text)
	s.Empty(s.router.ActiveTier())

	// exhausted: no tier is called until the primary rested
	out = s.generate()
	s.True(out.Degraded)
}

func (s *RouterTestSuite) TestAnalyzeStatus() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *narrative.Request) (string, error) {
			s.Equal("analyze", req.Operation)
			s.NotNil(req.Schema)
			s.Len(req.Messages, 1)
			return "```json\n" + validStatus + "\n```", nil
		})

	out, err := s.router.AnalyzeStatus(s.ctx, &narrative.AnalyzeInput{
		Status:   entities.CharacterStatus{HP: 100, MaxHP: 100},
		Firewall: true,
	})
	s.Require().NoError(err)
	s.Equal(80, out.Update.HP)
	s.Equal([]string{"Predator"}, out.Update.Skills)
	s.Equal("primary", out.Tier)
}

func (s *RouterTestSuite) TestAnalyzeSchemaViolationFallsThrough() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(`{"hp":"lots"}`, nil)
	s.secondary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(validStatus, nil)

	out, err := s.router.AnalyzeStatus(s.ctx, &narrative.AnalyzeInput{})
	s.Require().NoError(err)
	s.Equal("secondary", out.Tier)
	s.Equal(80, out.Update.HP)
}

func (s *RouterTestSuite) TestAnalyzeAllTiersFailed() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("not json", nil)
	s.secondary.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.Unavailable("down"))

	_, err := s.router.AnalyzeStatus(s.ctx, &narrative.AnalyzeInput{})
	s.True(errors.IsUnavailable(err))
}

func (s *RouterTestSuite) TestScan() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(`{"entities":[{"name":"Direwolf","magicLevel":"MEDIUM","distance":"20m","hostility":"HOSTILE"}]}`, nil)

	out, err := s.router.Scan(s.ctx, &narrative.ScanInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Entities, 1)
	s.Equal(narrative.MagicMedium, out.Entities[0].MagicLevel)
}

func (s *RouterTestSuite) TestAppraise() {
	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(`{"targetName":"Magic Ore","rank":"B","description":"Dense with magicules","estimatedValue":"300 gold"}`, nil)

	out, err := s.router.Appraise(s.ctx, &narrative.AppraiseInput{})
	s.Require().NoError(err)
	s.Equal("Magic Ore", out.Appraisal.TargetName)
}

func (s *RouterTestSuite) TestAnalyzeEntity() {
	_, err := s.router.AnalyzeEntity(s.ctx, &narrative.AnalyzeEntityInput{Term: "  "})
	s.True(errors.IsInvalidArgument(err))

	s.primary.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *narrative.Request) (string, error) {
			s.Contains(req.Messages[0].Text, "Magicule")
			return `{"name":"Magicule","type":"Energy","description":"d","usage":"u","origin":"o"}`, nil
		})

	out, err := s.router.AnalyzeEntity(s.ctx, &narrative.AnalyzeEntityInput{Term: "Magicule"})
	s.Require().NoError(err)
	s.Equal("Energy", out.Entity.Type)
}
