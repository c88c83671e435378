package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"zipstate/internal/audit"
	"zipstate/pkg/platform/privacy"
	"zipstate/pkg/requestcontext"
)

// Service evaluates per-IP limits for each endpoint class.
type Service struct {
	buckets BucketStore
	limits  map[EndpointClass]Limit
	logger  *slog.Logger
	metrics *Metrics
	audit   audit.Publisher
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(pub audit.Publisher) ServiceOption {
	return func(s *Service) { s.audit = pub }
}

// WithLimit overrides the budget for one endpoint class.
func WithLimit(class EndpointClass, limit Limit) ServiceOption {
	return func(s *Service) {
		if class.IsValid() && limit.Requests > 0 && limit.Window > 0 {
			s.limits[class] = limit
		}
	}
}

func NewService(buckets BucketStore, opts ...ServiceOption) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("bucket store is required")
	}
	svc := &Service{
		buckets: buckets,
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckIP evaluates the limit for one request from ip against class.
// Unknown classes are denied outright rather than silently unmetered.
func (s *Service) CheckIP(ctx context.Context, ip string, class EndpointClass) (*Result, error) {
	limit, ok := s.limits[class]
	if !ok {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "rate limit class has no configured budget",
				"class", class,
				"ip_prefix", privacy.AnonymizeIP(ip),
			)
		}
		return &Result{
			Allowed:    false,
			ResetAt:    requestcontext.Now(ctx).Add(time.Minute),
			RetryAfter: 60,
		}, nil
	}

	result, err := s.buckets.Allow(ctx, bucketKey(ip, class), limit.Requests, limit.Window)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveCheck(class, result.Allowed)
	}
	if !result.Allowed {
		result.RetryAfter = retryAfterSeconds(result.ResetAt)
		s.emitDenied(ctx, ip, class)
	}
	return result, nil
}

// Reset clears the counter for one ip and class pair.
func (s *Service) Reset(ctx context.Context, ip string, class EndpointClass) error {
	return s.buckets.Reset(ctx, bucketKey(ip, class))
}

func (s *Service) emitDenied(ctx context.Context, ip string, class EndpointClass) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Action:    audit.ActionRateLimited,
		Domain:    string(class),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  privacy.AnonymizeIP(ip),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func bucketKey(ip string, class EndpointClass) string {
	return "ratelimit:ip:" + string(class) + ":" + ip
}

func retryAfterSeconds(resetAt time.Time) int {
	seconds := int(time.Until(resetAt).Seconds()) + 1
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
