package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	prtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"zipstate/internal/audit"
)

type ServiceSuite struct {
	suite.Suite
	store      *InMemoryBucketStore
	auditStore *audit.InMemoryStore
	metrics    *Metrics
	service    *Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryBucketStore()
	s.auditStore = audit.NewInMemoryStore(0)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.ctx = context.Background()

	var err error
	s.service, err = NewService(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
		WithLimit(ClassLookup, Limit{Requests: 3, Window: time.Minute}),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil bucket store returns error", func() {
		_, err := NewService(nil)
		s.Error(err)
		s.Contains(err.Error(), "bucket store is required")
	})

	s.Run("valid store returns configured service", func() {
		svc, err := NewService(s.store)
		s.NoError(err)
		s.NotNil(svc)
	})

	s.Run("invalid limit override is ignored", func() {
		svc, err := NewService(s.store, WithLimit(ClassBatch, Limit{Requests: 0, Window: time.Minute}))
		s.Require().NoError(err)
		s.Equal(DefaultLimits()[ClassBatch], svc.limits[ClassBatch])
	})
}

func (s *ServiceSuite) TestCheckIP() {
	s.Run("allowed request reports remaining budget", func() {
		result, err := s.service.CheckIP(s.ctx, "203.0.113.7", ClassLookup)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3, result.Limit)
		s.Equal(2, result.Remaining)
		s.Zero(result.RetryAfter)
	})

	s.Run("denied request sets retry after", func() {
		for range 3 {
			_, err := s.service.CheckIP(s.ctx, "203.0.113.8", ClassLookup)
			s.Require().NoError(err)
		}

		result, err := s.service.CheckIP(s.ctx, "203.0.113.8", ClassLookup)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.GreaterOrEqual(result.RetryAfter, 1)
	})

	s.Run("classes are counted independently", func() {
		for range 3 {
			_, err := s.service.CheckIP(s.ctx, "203.0.113.9", ClassLookup)
			s.Require().NoError(err)
		}

		result, err := s.service.CheckIP(s.ctx, "203.0.113.9", ClassAuth)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})

	s.Run("unknown class is denied", func() {
		result, err := s.service.CheckIP(s.ctx, "203.0.113.10", EndpointClass("bogus"))
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.GreaterOrEqual(result.RetryAfter, 1)
	})
}

func (s *ServiceSuite) TestCheckIPRecordsMetrics() {
	for range 4 {
		_, err := s.service.CheckIP(s.ctx, "203.0.113.20", ClassLookup)
		s.Require().NoError(err)
	}

	allowed := prtestutil.ToFloat64(s.metrics.ChecksTotal.WithLabelValues("lookup", "allowed"))
	denied := prtestutil.ToFloat64(s.metrics.ChecksTotal.WithLabelValues("lookup", "denied"))
	deniedTotal := prtestutil.ToFloat64(s.metrics.DeniedTotal.WithLabelValues("lookup"))
	s.Equal(3.0, allowed)
	s.Equal(1.0, denied)
	s.Equal(1.0, deniedTotal)
}

func (s *ServiceSuite) TestCheckIPEmitsAuditOnDenial() {
	for range 4 {
		_, err := s.service.CheckIP(s.ctx, "203.0.113.33", ClassLookup)
		s.Require().NoError(err)
	}

	events, err := s.auditStore.ListRecent(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRateLimited, events[0].Action)
	s.Equal("lookup", events[0].Domain)
	// Only the anonymized prefix may reach the audit trail.
	s.Equal("203.0.113.0/24", events[0].ClientIP)
}

func (s *ServiceSuite) TestReset() {
	for range 3 {
		_, err := s.service.CheckIP(s.ctx, "203.0.113.41", ClassLookup)
		s.Require().NoError(err)
	}
	denied, err := s.service.CheckIP(s.ctx, "203.0.113.41", ClassLookup)
	s.Require().NoError(err)
	s.Require().False(denied.Allowed)

	s.Require().NoError(s.service.Reset(s.ctx, "203.0.113.41", ClassLookup))

	result, err := s.service.CheckIP(s.ctx, "203.0.113.41", ClassLookup)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
