package web_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/metrics"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
	socialmock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/web"
)

type RouterTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockSocial *socialmock.MockService
	metrics    *metrics.Metrics
	router     http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSocial = socialmock.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := prometheus.NewRegistry()
	m, err := metrics.New("test", reg)
	s.Require().NoError(err)
	s.metrics = m

	hub, err := web.NewHub(&web.HubConfig{Social: s.mockSocial, Recorder: m, Logger: logger})
	s.Require().NoError(err)

	s.router, err = web.NewRouter(&web.Config{
		Social:   s.mockSocial,
		Hub:      hub,
		Gatherer: reg,
		Logger:   logger,
	})
	s.Require().NoError(err)
}

func (s *RouterTestSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *RouterTestSuite) TestNewRouterValidation() {
	_, err := web.NewRouter(&web.Config{})
	s.Require().Error(err)
	s.Contains(err.Error(), "social")
}

func (s *RouterTestSuite) TestHealth() {
	rec := s.get("/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *RouterTestSuite) TestMetricsExposed() {
	s.metrics.ChatPosted()
	rec := s.get("/metrics")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "test_chat_messages_total 1")
}

func (s *RouterTestSuite) TestLeaderboard() {
	s.mockSocial.EXPECT().
		Leaderboard(gomock.Any(), &social.LeaderboardInput{Caller: "rimuru", Limit: 5}).
		Return(&social.LeaderboardOutput{
			Entries: []*entities.LeaderboardEntry{{Rank: 1, Username: "shion", Power: 9000}},
			Caller:  &entities.LeaderboardEntry{Rank: 2, Username: "rimuru", Power: 3300},
		}, nil)

	rec := s.get("/api/leaderboard?limit=5&user=rimuru")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Entries []entities.LeaderboardEntry `json:"entries"`
		Caller  *entities.LeaderboardEntry  `json:"caller"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Len(body.Entries, 1)
	s.Equal("shion", body.Entries[0].Username)
	s.Equal(2, body.Caller.Rank)
}

func (s *RouterTestSuite) TestLeaderboardDefaultsAndCapsLimit() {
	s.mockSocial.EXPECT().
		Leaderboard(gomock.Any(), &social.LeaderboardInput{Limit: 10}).
		Return(&social.LeaderboardOutput{}, nil)
	s.Equal(http.StatusOK, s.get("/api/leaderboard").Code)

	s.mockSocial.EXPECT().
		Leaderboard(gomock.Any(), &social.LeaderboardInput{Limit: 100}).
		Return(&social.LeaderboardOutput{}, nil)
	s.Equal(http.StatusOK, s.get("/api/leaderboard?limit=5000").Code)
}

func (s *RouterTestSuite) TestLeaderboardBadLimit() {
	rec := s.get("/api/leaderboard?limit=abc")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.True(strings.Contains(rec.Body.String(), "limit"))
}

func (s *RouterTestSuite) TestLeaderboardErrorsHideInternals() {
	s.mockSocial.EXPECT().
		Leaderboard(gomock.Any(), gomock.Any()).
		Return(nil, errors.Wrap(errors.Internal("redis exploded at 10.0.0.3"), "rank"))

	rec := s.get("/api/leaderboard")
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "10.0.0.3")

	s.mockSocial.EXPECT().
		Leaderboard(gomock.Any(), gomock.Any()).
		Return(nil, errors.PermissionDenied("account is banned"))
	rec = s.get("/api/leaderboard?user=hinata")
	s.Equal(http.StatusForbidden, rec.Code)
}
