package leaderboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/leaderboard"
	"github.com/KirkDiggler/rpg-narrator/internal/testutils"
)

type RedisLeaderboardTestSuite struct {
	suite.Suite
	cleanup func()
	repo    leaderboard.Repository
	ctx     context.Context
}

func TestRedisLeaderboardSuite(t *testing.T) {
	suite.Run(t, new(RedisLeaderboardTestSuite))
}

func (s *RedisLeaderboardTestSuite) SetupTest() {
	var client redisclient.Client
	client, s.cleanup = testutils.CreateTestRedisClient(s.T())
	s.ctx = context.Background()

	repo, err := leaderboard.NewRedis(&leaderboard.RedisConfig{
		Client:   client,
		Keyspace: redisclient.Keyspace(testutils.TestServerID),
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisLeaderboardTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisLeaderboardTestSuite) upsert(name string, power int64, god bool) {
	_, err := s.repo.Upsert(s.ctx, leaderboard.UpsertInput{
		Score: leaderboard.Score{Username: name, Power: power, GodMode: god},
	})
	s.Require().NoError(err)
}

func (s *RedisLeaderboardTestSuite) TestTopOrdersByPowerWithGodFirst() {
	s.upsert("rimuru", 5000, false)
	s.upsert("milim", 9000, false)
	s.upsert("veldora", 0, true)

	out, err := s.repo.Top(s.ctx, leaderboard.TopInput{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 3)

	s.Equal("veldora", out.Entries[0].Username)
	s.True(out.Entries[0].GodMode)
	s.Equal(1, out.Entries[0].Rank)

	s.Equal("milim", out.Entries[1].Username)
	s.Equal(int64(9000), out.Entries[1].Power)
	s.Equal(3, out.Entries[2].Rank)
}

func (s *RedisLeaderboardTestSuite) TestRankAndRemove() {
	s.upsert("rimuru", 5000, false)
	s.upsert("milim", 9000, false)

	out, err := s.repo.Rank(s.ctx, leaderboard.RankInput{Username: "rimuru"})
	s.Require().NoError(err)
	s.Equal(2, out.Entry.Rank)
	s.Equal(int64(5000), out.Entry.Power)

	_, err = s.repo.Remove(s.ctx, leaderboard.RemoveInput{Username: "rimuru"})
	s.Require().NoError(err)

	_, err = s.repo.Rank(s.ctx, leaderboard.RankInput{Username: "rimuru"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisLeaderboardTestSuite) TestReplace() {
	s.upsert("stale", 1, false)

	_, err := s.repo.Replace(s.ctx, leaderboard.ReplaceInput{Scores: []leaderboard.Score{
		{Username: "rimuru", Power: 10},
		{Username: "milim", Power: 20},
	}})
	s.Require().NoError(err)

	out, err := s.repo.Top(s.ctx, leaderboard.TopInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)
	s.Equal("milim", out.Entries[0].Username)
}
