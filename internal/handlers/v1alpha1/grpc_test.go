package v1alpha1_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle"
	battlemock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle/mock"
)

type GRPCTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockBattle *battlemock.MockService
	server     *grpc.Server
	conn       *grpc.ClientConn
	client     *v1alpha1.ArenaClient
}

func TestGRPCSuite(t *testing.T) {
	suite.Run(t, new(GRPCTestSuite))
}

func (s *GRPCTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockBattle = battlemock.NewMockService(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := v1alpha1.NewArenaHandler(&v1alpha1.ArenaHandlerConfig{
		BattleService: s.mockBattle,
		Logger:        logger,
	})
	s.Require().NoError(err)

	lis := bufconn.Listen(1 << 20)
	s.server = grpc.NewServer(v1alpha1.ServerOptions(logger)...)
	v1alpha1.RegisterArenaServer(s.server, handler)
	go func() { _ = s.server.Serve(lis) }()

	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.client = v1alpha1.NewArenaClient(s.conn)
}

func (s *GRPCTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
}

func (s *GRPCTestSuite) as(username string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), v1alpha1.UserHeader, username)
}

func (s *GRPCTestSuite) TestCallWithoutIdentityIsRejected() {
	_, err := s.client.Current(context.Background(), &v1alpha1.CurrentRequest{})
	s.Equal(codes.Unauthenticated, status.Code(err))
}

func (s *GRPCTestSuite) TestCallerReachesOrchestrator() {
	rec := &entities.BattleRecord{ID: "battle_1", Challenger: "rimuru", Target: "milim", Version: 1}
	s.mockBattle.EXPECT().
		Current(gomock.Any(), &battle.CurrentInput{Caller: "rimuru"}).
		Return(&battle.CurrentOutput{Records: []*entities.BattleRecord{rec}}, nil)

	resp, err := s.client.Current(s.as("rimuru"), &v1alpha1.CurrentRequest{})
	s.Require().NoError(err)
	s.Require().Len(resp.Battles, 1)
	s.Equal("battle_1", resp.Battles[0].ID)
	s.Equal(int64(1), resp.Battles[0].Version)
}

func (s *GRPCTestSuite) TestReasonCrossesTheWire() {
	s.mockBattle.EXPECT().
		Accept(gomock.Any(), &battle.BattleInput{Caller: "milim", BattleID: "battle_1"}).
		Return(nil, errors.NotPending("battle_1"))

	_, err := s.client.Accept(s.as("milim"), &v1alpha1.BattleRequest{BattleID: "battle_1"})
	s.True(errors.HasReason(errors.FromGRPCError(err), errors.ReasonNotPending))
}

func (s *GRPCTestSuite) TestPanicIsRecovered() {
	s.mockBattle.EXPECT().
		GetBattle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *battle.BattleInput) (*battle.BattleOutput, error) {
			panic("boom")
		})

	_, err := s.client.GetBattle(s.as("rimuru"), &v1alpha1.BattleRequest{BattleID: "battle_1"})
	s.Equal(codes.Internal, status.Code(err))
}

func (s *GRPCTestSuite) TestSubscribeBattlesStreams() {
	updates := make(chan *entities.BattleRecord, 2)
	closed := make(chan struct{})
	s.mockBattle.EXPECT().
		Subscribe(gomock.Any(), &battle.SubscribeInput{Caller: "rimuru"}).
		Return(&battle.SubscribeOutput{
			Updates: updates,
			Close: func() error {
				close(closed)
				return nil
			},
		}, nil)

	ctx, cancel := context.WithCancel(s.as("rimuru"))
	stream, err := s.client.SubscribeBattles(ctx, &v1alpha1.SubscribeBattlesRequest{})
	s.Require().NoError(err)

	updates <- &entities.BattleRecord{ID: "battle_1", Version: 2}
	updates <- &entities.BattleRecord{ID: "battle_1", Version: 3}

	first, err := stream.Recv()
	s.Require().NoError(err)
	s.Equal(int64(2), first.Battle.Version)
	second, err := stream.Recv()
	s.Require().NoError(err)
	s.Equal(int64(3), second.Battle.Version)

	cancel()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		s.Fail("subscription was not closed")
	}
}
