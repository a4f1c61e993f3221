package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/session"
	sessionmock "github.com/KirkDiggler/rpg-narrator/internal/session/mock"
)

type SessionTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	arena  *sessionmock.MockArena
	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func (s *SessionTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.arena = sessionmock.NewMockArena(s.ctrl)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan error, 1)
}

func (s *SessionTestSuite) TearDownTest() {
	s.cancel()
	select {
	case err := <-s.done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		s.Fail("session did not stop")
	}
}

func (s *SessionTestSuite) start(interval time.Duration) *session.Session {
	sess, err := session.New(&session.Config{
		Arena:        s.arena,
		Username:     "rimuru",
		PollInterval: interval,
	})
	s.Require().NoError(err)
	go func() { s.done <- sess.Run(s.ctx) }()
	return sess
}

func (s *SessionTestSuite) next(sess *session.Session) session.Update {
	select {
	case u := <-sess.Updates():
		return u
	case <-time.After(2 * time.Second):
		s.FailNow("no update")
		return session.Update{}
	}
}

func (s *SessionTestSuite) TestNewValidation() {
	_, err := session.New(&session.Config{Username: "rimuru"})
	s.Require().Error(err)
	s.Contains(err.Error(), "arena")

	_, err = session.New(&session.Config{Arena: s.arena})
	s.Require().Error(err)
	s.Contains(err.Error(), "username")

	s.cancel()
	s.done <- context.Canceled
}

func (s *SessionTestSuite) TestPushedRecordCues() {
	push := make(chan *entities.BattleRecord, 1)
	s.arena.EXPECT().Watch(gomock.Any()).Return((<-chan *entities.BattleRecord)(push), nil)
	s.arena.EXPECT().Current(gomock.Any()).Return(nil, nil).AnyTimes()

	sess := s.start(time.Hour)
	push <- record("b1", entities.BattleStatusInProgress, 3, 1)

	u := s.next(sess)
	s.Require().Len(u.Cues, 1)
	s.Equal("b1", u.Cues[0].BattleID)
	s.Equal("b1", sess.State().Active.ID)
}

func (s *SessionTestSuite) TestActAppliesServerRecord() {
	push := make(chan *entities.BattleRecord, 1)
	s.arena.EXPECT().Watch(gomock.Any()).Return((<-chan *entities.BattleRecord)(push), nil)
	s.arena.EXPECT().Current(gomock.Any()).Return(nil, nil).AnyTimes()

	sess := s.start(time.Hour)
	push <- record("b1", entities.BattleStatusInProgress, 2)
	s.next(sess)

	after := record("b1", entities.BattleStatusInProgress, 3, 1)
	after.Logs[0].Actor = "rimuru"
	after.Turn = "milim"
	s.arena.EXPECT().Act(gomock.Any(), "b1", "Sticky Thread").Return(after, nil)

	s.Require().NoError(sess.Act(s.ctx, "Sticky Thread"))
	u := s.next(sess)
	s.Require().Len(u.Cues, 1)
	s.Equal("rimuru", u.Cues[0].Entry.Actor)

	// the turn moved to milim, so a second move is refused locally
	err := sess.Act(s.ctx, "Sticky Thread")
	s.True(errors.HasReason(err, errors.ReasonNotYourTurn))
}

func (s *SessionTestSuite) TestActionsNeedABattle() {
	s.arena.EXPECT().Watch(gomock.Any()).Return(nil, errors.Unavailable("down"))
	s.arena.EXPECT().Current(gomock.Any()).Return(nil, nil).AnyTimes()
	s.arena.EXPECT().Watch(gomock.Any()).Return(nil, errors.Unavailable("down")).AnyTimes()

	sess := s.start(time.Hour)

	s.True(errors.IsFailedPrecondition(sess.Act(s.ctx, "Sticky Thread")))
	s.True(errors.IsFailedPrecondition(sess.Surrender(s.ctx)))
	s.True(errors.IsFailedPrecondition(sess.Accept(s.ctx)))
	s.True(errors.IsFailedPrecondition(sess.Decline(s.ctx)))
}

func (s *SessionTestSuite) TestResubscribesAfterStreamCloses() {
	first := make(chan *entities.BattleRecord)
	second := make(chan *entities.BattleRecord, 1)
	gomock.InOrder(
		s.arena.EXPECT().Watch(gomock.Any()).Return((<-chan *entities.BattleRecord)(first), nil),
		s.arena.EXPECT().Watch(gomock.Any()).Return((<-chan *entities.BattleRecord)(second), nil),
	)
	s.arena.EXPECT().Current(gomock.Any()).Return(nil, nil).AnyTimes()

	sess := s.start(10 * time.Millisecond)
	close(first)
	second <- record("b1", entities.BattleStatusPending, 1)

	u := s.next(sess)
	s.Require().NotNil(u.State.Invite)
	s.Equal("b1", u.State.Invite.ID)
}

func (s *SessionTestSuite) TestPollFetchesBattlesThatLeftCurrent() {
	s.arena.EXPECT().Watch(gomock.Any()).Return(nil, errors.Unavailable("down")).AnyTimes()
	gomock.InOrder(
		s.arena.EXPECT().Current(gomock.Any()).Return([]*entities.BattleRecord{
			record("b1", entities.BattleStatusPending, 1),
		}, nil),
		s.arena.EXPECT().Current(gomock.Any()).Return(nil, nil).AnyTimes(),
	)
	s.arena.EXPECT().Get(gomock.Any(), "b1").
		Return(record("b1", entities.BattleStatusDeclined, 2), nil)

	sess := s.start(10 * time.Millisecond)

	u := s.next(sess)
	s.Require().NotNil(u.State.Invite)

	u = s.next(sess)
	s.Nil(u.State.Invite)
	s.Nil(sess.State().Invite)
}

func (s *SessionTestSuite) TestDismissClearsFinishedBattle() {
	push := make(chan *entities.BattleRecord, 2)
	s.arena.EXPECT().Watch(gomock.Any()).Return((<-chan *entities.BattleRecord)(push), nil)
	s.arena.EXPECT().Current(gomock.Any()).Return(nil, nil).AnyTimes()

	sess := s.start(time.Hour)
	push <- record("b1", entities.BattleStatusInProgress, 2)
	s.next(sess)
	push <- record("b1", entities.BattleStatusFinished, 3, 1)
	s.next(sess)

	s.Require().NoError(sess.Dismiss(s.ctx))
	s.Eventually(func() bool { return sess.State().Active == nil }, time.Second, 10*time.Millisecond)
}
