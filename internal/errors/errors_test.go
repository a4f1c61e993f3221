package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "battle not found",
			expected: "NOT_FOUND: battle not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "invalid input",
			expected: "INVALID_ARGUMENT: invalid input",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotFound("save not found").
		WithMeta("username", "rimuru").
		WithMeta("server_id", "sv_global")

	s.Assert().Equal("rimuru", err.Meta["username"])
	s.Assert().Equal("sv_global", err.Meta["server_id"])
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to load save")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to load save", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCodeAndMeta() {
	baseErr := errors.NotYourTurn("veldora")
	wrapped := errors.Wrap(baseErr, "act failed")

	s.Assert().Equal(errors.CodeFailedPrecondition, wrapped.Code)
	s.Assert().True(errors.HasReason(wrapped, errors.ReasonNotYourTurn))

	// wrapping must not alias the inner metadata
	wrapped.WithMeta("battle_id", "b1")
	s.Assert().NotContains(baseErr.Meta, "battle_id")
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("connection timeout")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeUnavailable, "service unavailable")

	s.Assert().Equal(errors.CodeUnavailable, wrapped.Code)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should be nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestReasons() {
	testCases := []struct {
		name   string
		err    *errors.Error
		code   errors.Code
		reason errors.Reason
	}{
		{"not your turn", errors.NotYourTurn("a"), errors.CodeFailedPrecondition, errors.ReasonNotYourTurn},
		{"match finished", errors.MatchFinished("b1"), errors.CodeFailedPrecondition, errors.ReasonMatchFinished},
		{"not pending", errors.NotPending("b1"), errors.CodeFailedPrecondition, errors.ReasonNotPending},
		{"invalid target", errors.InvalidTarget("self"), errors.CodeInvalidArgument, errors.ReasonInvalidTarget},
		{"energy", errors.InsufficientEnergy("Raphael", 50, 10), errors.CodeFailedPrecondition, errors.ReasonInsufficientEnergy},
		{"skill", errors.InvalidSkill("Fireball"), errors.CodeInvalidArgument, errors.ReasonInvalidSkill},
		{"claimed", errors.AlreadyClaimed("m1"), errors.CodeFailedPrecondition, errors.ReasonAlreadyClaimed},
		{"busy", errors.Busy("in flight"), errors.CodeResourceExhausted, errors.ReasonBusy},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.code, tc.err.Code)
			s.Assert().Equal(tc.reason, errors.GetReason(tc.err))
		})
	}

	s.Assert().Equal(errors.Reason(""), errors.GetReason(fmt.Errorf("plain")))
}

func (s *ErrorsTestSuite) TestHelperFunctions() {
	notFoundErr := errors.NotFound("test")
	invalidErr := errors.InvalidArgument("test")
	wrappedErr := errors.Wrap(notFoundErr, "wrapped")

	s.Assert().True(errors.IsNotFound(notFoundErr))
	s.Assert().True(errors.IsNotFound(wrappedErr))
	s.Assert().False(errors.IsNotFound(invalidErr))
	s.Assert().True(errors.IsInvalidArgument(invalidErr))
	s.Assert().True(notFoundErr.Is(errors.NotFound("other")))
}

func (s *ErrorsTestSuite) TestGetCode() {
	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(errors.Wrap(errors.NotFound("x"), "y")))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, 200},
		{errors.CodeNotFound, 404},
		{errors.CodeInvalidArgument, 400},
		{errors.CodeFailedPrecondition, 409},
		{errors.CodePermissionDenied, 403},
		{errors.CodeUnauthenticated, 401},
		{errors.CodeUnavailable, 503},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Assert().Equal(tc.expected, tc.code.HTTPStatus())
		})
	}
}

func (s *ErrorsTestSuite) TestCodesSurviveGRPC() {
	for _, code := range []errors.Code{
		errors.CodeNotFound,
		errors.CodeFailedPrecondition,
		errors.CodeAborted,
		errors.CodeResourceExhausted,
		errors.CodeUnauthenticated,
	} {
		back := errors.FromGRPCError(errors.ToGRPCError(errors.New(code, "x")))
		s.Assert().Equal(code, errors.GetCode(back))
	}
	s.Assert().Equal(codes.Unknown, errors.Code("BOGUS").GRPCCode())
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(errors.FromGRPCError(status.Error(codes.Unknown, "?"))))
}

func (s *ErrorsTestSuite) TestPublicMessage() {
	s.Assert().Equal("battle b1 is not pending", errors.PublicMessage(errors.NotPending("b1")))
	s.Assert().Equal("internal error", errors.PublicMessage(errors.Wrap(fmt.Errorf("dial tcp"), "failed to load save")))
	s.Assert().Equal("internal error", errors.PublicMessage(fmt.Errorf("plain")))
	s.Assert().Equal("service unavailable", errors.PublicMessage(errors.Unavailable("redis down")))
}

func (s *ErrorsTestSuite) TestGRPCRoundTripKeepsReason() {
	grpcErr := errors.ToGRPCError(errors.NotYourTurn("shion"))

	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Assert().Equal(codes.FailedPrecondition, st.Code())
	s.Assert().Equal("it is not shion's turn", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.Assert().Equal(errors.CodeFailedPrecondition, errors.GetCode(back))
	s.Assert().True(errors.HasReason(back, errors.ReasonNotYourTurn))
}

func (s *ErrorsTestSuite) TestToGRPCErrorHidesPlainErrors() {
	grpcErr := errors.ToGRPCError(fmt.Errorf("dial tcp 10.0.0.1: refused"))

	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Assert().Equal(codes.Internal, st.Code())
	s.Assert().NotContains(st.Message(), "10.0.0.1")
}

func (s *ErrorsTestSuite) TestFromGRPCErrorWithoutDetails() {
	err := errors.FromGRPCError(status.Error(codes.InvalidArgument, "invalid input"))
	s.Assert().Equal(errors.CodeInvalidArgument, errors.GetCode(err))
	s.Assert().Equal("invalid input", errors.GetMessage(err))
}
