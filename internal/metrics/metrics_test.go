package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-narrator/internal/metrics"
)

type MetricsTestSuite struct {
	suite.Suite
	reg *prometheus.Registry
	m   *metrics.Metrics
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (s *MetricsTestSuite) SetupTest() {
	s.reg = prometheus.NewRegistry()
	m, err := metrics.New("", s.reg)
	s.Require().NoError(err)
	s.m = m
}

func (s *MetricsTestSuite) TestDoubleRegistrationFails() {
	_, err := metrics.New("", s.reg)
	s.Error(err)
}

func (s *MetricsTestSuite) TestBackendCalls() {
	s.m.ObserveBackendCall("primary", "generate", nil, 120*time.Millisecond)
	s.m.ObserveBackendCall("primary", "generate", errors.New("boom"), time.Second)
	s.m.ObserveBackendCall("fallback", "analyze", nil, time.Millisecond)

	s.Equal(1.0, testutil.ToFloat64(s.m.BackendCalls.WithLabelValues("primary", "generate", "ok")))
	s.Equal(1.0, testutil.ToFloat64(s.m.BackendCalls.WithLabelValues("primary", "generate", "error")))
	s.Equal(1.0, testutil.ToFloat64(s.m.BackendCalls.WithLabelValues("fallback", "analyze", "ok")))
	s.Equal(2, testutil.CollectAndCount(s.m.BackendLatency))
}

func (s *MetricsTestSuite) TestBattleAndChat() {
	s.m.BattleTransition("act")
	s.m.BattleTransition("act")
	s.m.ChatPosted()
	s.m.ClientConnected()
	s.m.ClientConnected()
	s.m.ClientDisconnected()

	s.Equal(2.0, testutil.ToFloat64(s.m.Battles.WithLabelValues("act")))
	s.Equal(1.0, testutil.ToFloat64(s.m.ChatMessages))
	s.Equal(1.0, testutil.ToFloat64(s.m.ChatClients))
}
