package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/metrics"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
	socialmock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/web"
)

type HubTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockSocial *socialmock.MockService
	metrics    *metrics.Metrics
	hub        *web.Hub
	server     *httptest.Server
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}

func (s *HubTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSocial = socialmock.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m, err := metrics.New("test", prometheus.NewRegistry())
	s.Require().NoError(err)
	s.metrics = m

	s.hub, err = web.NewHub(&web.HubConfig{Social: s.mockSocial, Recorder: m, Logger: logger})
	s.Require().NoError(err)
	router, err := web.NewRouter(&web.Config{Social: s.mockSocial, Hub: s.hub, Logger: logger})
	s.Require().NoError(err)
	s.server = httptest.NewServer(router)
}

func (s *HubTestSuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
}

func (s *HubTestSuite) url(user string) string {
	u := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/chat"
	if user != "" {
		u += "?user=" + user
	}
	return u
}

func (s *HubTestSuite) read(conn *websocket.Conn) web.Event {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var ev web.Event
	s.Require().NoError(conn.ReadJSON(&ev))
	return ev
}

func (s *HubTestSuite) expectJoin(user string, live chan *entities.ChatMessage, closed chan struct{}) {
	s.mockSocial.EXPECT().
		ListChat(gomock.Any(), &social.ListChatInput{Caller: user, Limit: web.DefaultHistoryLimit}).
		Return(&social.ListChatOutput{Messages: []*entities.ChatMessage{
			{ID: "chat_1", Username: "veldora", Text: "Kwahaha!", IsAdmin: true},
		}}, nil)
	s.mockSocial.EXPECT().
		SubscribeChat(gomock.Any(), &social.SubscribeChatInput{Caller: user}).
		Return(&social.SubscribeChatOutput{
			Messages: live,
			Close: func() error {
				close(closed)
				return nil
			},
		}, nil)
}

func (s *HubTestSuite) TestHistoryLiveAndPost() {
	live := make(chan *entities.ChatMessage, 1)
	closed := make(chan struct{})
	s.expectJoin("rimuru", live, closed)

	posted := make(chan struct{})
	s.mockSocial.EXPECT().
		PostChat(gomock.Any(), &social.PostChatInput{Caller: "rimuru", Text: "hello"}).
		DoAndReturn(func(_ context.Context, in *social.PostChatInput) (*social.PostChatOutput, error) {
			close(posted)
			return &social.PostChatOutput{Message: &entities.ChatMessage{ID: "chat_2", Text: in.Text}}, nil
		})

	conn, _, err := websocket.DefaultDialer.Dial(s.url("rimuru"), nil)
	s.Require().NoError(err)

	history := s.read(conn)
	s.Equal(web.EventHistory, history.Type)
	s.Require().Len(history.Messages, 1)
	s.True(history.Messages[0].IsAdmin)
	s.Equal(int64(1), s.hub.ClientCount())
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ChatClients))

	live <- &entities.ChatMessage{ID: "chat_3", Username: "milim", Text: "Let's fight!"}
	msg := s.read(conn)
	s.Equal(web.EventMessage, msg.Type)
	s.Equal("Let's fight!", msg.Message.Text)

	s.Require().NoError(conn.WriteJSON(web.Post{Text: "hello"}))
	select {
	case <-posted:
	case <-time.After(2 * time.Second):
		s.FailNow("post did not arrive")
	}

	s.Require().NoError(conn.Close())
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		s.FailNow("subscription was not closed")
	}
	s.Eventually(func() bool { return s.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	s.Equal(float64(0), testutil.ToFloat64(s.metrics.ChatClients))
}

func (s *HubTestSuite) TestRejectedPostReturnsErrorEvent() {
	live := make(chan *entities.ChatMessage)
	s.expectJoin("rimuru", live, make(chan struct{}))
	s.mockSocial.EXPECT().
		PostChat(gomock.Any(), gomock.Any()).
		Return(nil, errors.InvalidArgument("message is too long"))

	conn, _, err := websocket.DefaultDialer.Dial(s.url("rimuru"), nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.read(conn)

	s.Require().NoError(conn.WriteJSON(web.Post{Text: strings.Repeat("a", 600)}))
	ev := s.read(conn)
	s.Equal(web.EventError, ev.Type)
	s.Equal("message is too long", ev.Error)
}

func (s *HubTestSuite) TestBannedCallerIsRefusedBeforeUpgrade() {
	s.mockSocial.EXPECT().
		ListChat(gomock.Any(), gomock.Any()).
		Return(nil, errors.PermissionDenied("account is banned"))

	_, resp, err := websocket.DefaultDialer.Dial(s.url("hinata"), nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *HubTestSuite) TestMissingUser() {
	_, resp, err := websocket.DefaultDialer.Dial(s.url(""), nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
