package battles_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/battles"
	"github.com/KirkDiggler/rpg-narrator/internal/testutils"
)

type RedisBattleTestSuite struct {
	suite.Suite
	client  redisclient.Client
	mr      *miniredis.Miniredis
	cleanup func()
	repo    battles.Repository
	ctx     context.Context
	now     time.Time
}

func TestRedisBattleSuite(t *testing.T) {
	suite.Run(t, new(RedisBattleTestSuite))
}

func (s *RedisBattleTestSuite) SetupTest() {
	s.client, s.mr, s.cleanup = testutils.CreateTestRedis(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	repo, err := battles.NewRedis(&battles.RedisConfig{
		Client:   s.client,
		Keyspace: redisclient.Keyspace(testutils.TestServerID),
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisBattleTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisBattleTestSuite) builder(id string) battles.BuildFunc {
	return func(challengerBusy, targetBusy bool) (*entities.BattleRecord, error) {
		if challengerBusy || targetBusy {
			return nil, errors.InvalidTarget("busy")
		}
		return &entities.BattleRecord{
			ID:         id,
			ServerID:   testutils.TestServerID,
			Challenger: "rimuru",
			Target:     "milim",
			Status:     entities.BattleStatusPending,
			P1HP:       100,
			P1MaxHP:    100,
			P2HP:       100,
			P2MaxHP:    100,
			Logs:       []entities.BattleLogEntry{},
			CreatedAt:  s.now,
			UpdatedAt:  s.now,
		}, nil
	}
}

func (s *RedisBattleTestSuite) create(id string) *entities.BattleRecord {
	out, err := s.repo.Create(s.ctx, battles.CreateInput{
		Challenger: "rimuru",
		Target:     "milim",
		Build:      s.builder(id),
	})
	s.Require().NoError(err)
	return out.Record
}

func (s *RedisBattleTestSuite) TestNewRedis() {
	testCases := []struct {
		name    string
		config  *battles.RedisConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
			errMsg:  "config cannot be nil",
		},
		{
			name:    "missing client",
			config:  &battles.RedisConfig{Keyspace: "sv_test"},
			wantErr: true,
			errMsg:  "client",
		},
		{
			name:    "missing keyspace",
			config:  &battles.RedisConfig{Client: s.client},
			wantErr: true,
			errMsg:  "keyspace",
		},
		{
			name:   "valid",
			config: &battles.RedisConfig{Client: s.client, Keyspace: "sv_test"},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			repo, err := battles.NewRedis(tc.config)
			if tc.wantErr {
				s.Error(err)
				s.Contains(err.Error(), tc.errMsg)
				s.Nil(repo)
				return
			}
			s.NoError(err)
			s.NotNil(repo)
		})
	}
}

func (s *RedisBattleTestSuite) TestCreateAndGet() {
	rec := s.create("battle_1")
	s.Equal(int64(1), rec.Version)

	out, err := s.repo.Get(s.ctx, battles.GetInput{ID: "battle_1"})
	s.Require().NoError(err)
	s.Equal("rimuru", out.Record.Challenger)
	s.Equal(entities.BattleStatusPending, out.Record.Status)
	s.True(s.mr.Exists("sv_test:battle:battle_1"))
}

func (s *RedisBattleTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, battles.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, battles.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisBattleTestSuite) TestCreateSeesActiveBattle() {
	s.create("battle_1")

	_, err := s.repo.Create(s.ctx, battles.CreateInput{
		Challenger: "rimuru",
		Target:     "milim",
		Build:      s.builder("battle_2"),
	})
	s.True(errors.HasReason(err, errors.ReasonInvalidTarget))
	s.False(s.mr.Exists("sv_test:battle:battle_2"))
}

func (s *RedisBattleTestSuite) TestUpdateBumpsVersion() {
	s.create("battle_1")

	out, err := s.repo.Update(s.ctx, battles.UpdateInput{
		ID: "battle_1",
		Mutate: func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
			cur.Status = entities.BattleStatusInProgress
			cur.Turn = "rimuru"
			return cur, nil
		},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), out.Record.Version)
	s.Equal("rimuru", out.Record.Turn)
}

func (s *RedisBattleTestSuite) TestUpdateRejectionLeavesRecord() {
	s.create("battle_1")

	_, err := s.repo.Update(s.ctx, battles.UpdateInput{
		ID: "battle_1",
		Mutate: func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
			return nil, errors.NotYourTurn("milim")
		},
	})
	s.True(errors.HasReason(err, errors.ReasonNotYourTurn))

	out, err := s.repo.Get(s.ctx, battles.GetInput{ID: "battle_1"})
	s.Require().NoError(err)
	s.Equal(int64(1), out.Record.Version)
}

func (s *RedisBattleTestSuite) TestTerminalLeavesActiveIndexAndExpires() {
	s.create("battle_1")

	_, err := s.repo.Update(s.ctx, battles.UpdateInput{
		ID: "battle_1",
		Mutate: func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
			cur.Status = entities.BattleStatusDeclined
			return cur, nil
		},
	})
	s.Require().NoError(err)

	active, err := s.repo.ListActive(s.ctx, battles.ListActiveInput{Username: "milim"})
	s.Require().NoError(err)
	s.Empty(active.Records)
	s.Positive(s.mr.TTL("sv_test:battle:battle_1"))

	// a new challenge is allowed once the old one is terminal
	s.create("battle_2")
}

func (s *RedisBattleTestSuite) TestConcurrentTurnsAdvanceOnce() {
	s.create("battle_1")
	_, err := s.repo.Update(s.ctx, battles.UpdateInput{
		ID: "battle_1",
		Mutate: func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
			cur.Status = entities.BattleStatusInProgress
			cur.Turn = "rimuru"
			return cur, nil
		},
	})
	s.Require().NoError(err)

	// both writers act as rimuru; only one may observe rimuru's turn
	act := func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
		if cur.Turn != "rimuru" {
			return nil, errors.NotYourTurn("rimuru")
		}
		cur.Turn = "milim"
		cur.Logs = append(cur.Logs, entities.BattleLogEntry{Turn: len(cur.Logs) + 1, Actor: "rimuru"})
		return cur, nil
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.repo.Update(s.ctx, battles.UpdateInput{ID: "battle_1", Mutate: act})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	s.Equal(1, succeeded)

	out, err := s.repo.Get(s.ctx, battles.GetInput{ID: "battle_1"})
	s.Require().NoError(err)
	s.Len(out.Record.Logs, 1)
	s.Equal(int64(3), out.Record.Version)
}

func (s *RedisBattleTestSuite) TestDelete() {
	s.create("battle_1")

	_, err := s.repo.Delete(s.ctx, battles.DeleteInput{ID: "battle_1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, battles.GetInput{ID: "battle_1"})
	s.True(errors.IsNotFound(err))

	recent, err := s.repo.ListRecent(s.ctx, battles.ListRecentInput{})
	s.Require().NoError(err)
	s.Empty(recent.Records)

	_, err = s.repo.Delete(s.ctx, battles.DeleteInput{ID: "battle_1"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisBattleTestSuite) TestListRecentNewestFirst() {
	s.create("battle_1")
	_, err := s.repo.Update(s.ctx, battles.UpdateInput{
		ID: "battle_1",
		Mutate: func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
			cur.Status = entities.BattleStatusFinished
			return cur, nil
		},
	})
	s.Require().NoError(err)

	s.now = s.now.Add(time.Minute)
	s.create("battle_2")

	out, err := s.repo.ListRecent(s.ctx, battles.ListRecentInput{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 2)
	s.Equal("battle_2", out.Records[0].ID)
	s.Equal("battle_1", out.Records[1].ID)
}

func (s *RedisBattleTestSuite) TestSubscribeReceivesWrites() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sub, err := s.repo.Subscribe(ctx, battles.SubscribeInput{Username: "milim"})
	s.Require().NoError(err)
	defer func() { _ = sub.Close() }()

	s.create("battle_1")

	select {
	case rec := <-sub.Updates:
		s.Equal("battle_1", rec.ID)
		s.Equal(int64(1), rec.Version)
	case <-time.After(2 * time.Second):
		s.Fail("no update delivered")
	}
}
