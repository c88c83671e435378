// Package service implements the resolution operations over the region
// indexes, with miss logging, audit emission and tracing around them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"zipstate/internal/audit"
	"zipstate/internal/lookup/metrics"
	"zipstate/internal/lookup/models"
	"zipstate/internal/lookup/store/misses"
	"zipstate/internal/region"
	"zipstate/pkg/domain"
	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/privacy"
	"zipstate/pkg/requestcontext"
)

const (
	// MaxBatchSize bounds the number of items in one batch request.
	MaxBatchSize = 100
	// batchConcurrency bounds parallel item resolution within a batch.
	batchConcurrency = 8
)

// Service resolves codes to states. The indexes are injected so tests and
// future data sources can swap tables without touching the operations.
type Service struct {
	postal   *region.Index
	areaCode *region.Index
	misses   misses.Store
	audit    audit.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type serviceConfig struct {
	misses  misses.Store
	audit   audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*serviceConfig)

// WithMissStore records unmatched codes to store.
func WithMissStore(store misses.Store) Option {
	return func(c *serviceConfig) { c.misses = store }
}

// WithAuditPublisher routes lookup events to pub.
func WithAuditPublisher(pub audit.Publisher) Option {
	return func(c *serviceConfig) { c.audit = pub }
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

// WithMetrics records lookup counters and latencies to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func New(postal, areaCode *region.Index, opts ...Option) (*Service, error) {
	if postal == nil {
		return nil, errors.New("postal index is required")
	}
	if areaCode == nil {
		return nil, errors.New("area code index is required")
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		postal:   postal,
		areaCode: areaCode,
		misses:   cfg.misses,
		audit:    cfg.audit,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		tracer:   otel.Tracer("zipstate/lookup"),
	}, nil
}

// ResolvePostalCode maps a ZIP or ZIP+4 to the state that issued it.
// Matching runs over the full digit string, so a ZIP+4 resolves through
// range rules the same way its five-digit prefix would.
//
// Errors: CodeInvalidInput for unparseable input, CodeNotFound when no rule
// matches. Unmatched codes are logged to the miss store on the way out.
func (s *Service) ResolvePostalCode(ctx context.Context, raw string) (*models.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.ResolvePostalCode",
		trace.WithAttributes(attribute.String("lookup.domain", string(models.DomainPostal))))
	defer span.End()

	start := time.Now()
	code, err := domain.ParsePostalCode(raw)
	if err != nil {
		span.RecordError(err)
		s.finishLookup(ctx, lookupOutcome{
			action:  audit.ActionPostalLookup,
			domain:  models.DomainPostal,
			code:    raw,
			outcome: audit.OutcomeInvalid,
			started: start,
		})
		return nil, err
	}

	state, err := s.postal.FindRegion(code.Digits())
	if err != nil {
		span.RecordError(err)
		s.finishLookup(ctx, lookupOutcome{
			action:  audit.ActionPostalLookup,
			domain:  models.DomainPostal,
			code:    code.Digits(),
			outcome: outcomeFromErr(err),
			started: start,
		})
		return nil, err
	}

	span.SetAttributes(attribute.String("lookup.state", state.String()))
	s.finishLookup(ctx, lookupOutcome{
		action:  audit.ActionPostalLookup,
		domain:  models.DomainPostal,
		code:    code.Digits(),
		state:   state,
		outcome: audit.OutcomeResolved,
		started: start,
	})
	return &models.Resolution{
		Domain:    models.DomainPostal,
		Code:      code.String(),
		State:     state,
		StateName: state.Name(),
		Rule:      s.matchedRule(s.postal, state, code.Digits()),
	}, nil
}

// ResolveAreaCode maps a NANP area code to its state. Well-formed codes that
// no state issued (unassigned blocks like 010) come back CodeNotFound.
func (s *Service) ResolveAreaCode(ctx context.Context, raw string) (*models.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.ResolveAreaCode",
		trace.WithAttributes(attribute.String("lookup.domain", string(models.DomainAreaCode))))
	defer span.End()

	start := time.Now()
	code, err := domain.ParseAreaCode(raw)
	if err != nil {
		span.RecordError(err)
		s.finishLookup(ctx, lookupOutcome{
			action:  audit.ActionAreaCodeLookup,
			domain:  models.DomainAreaCode,
			code:    raw,
			outcome: audit.OutcomeInvalid,
			started: start,
		})
		return nil, err
	}

	state, err := s.areaCode.FindRegion(code.Digits())
	if err != nil {
		span.RecordError(err)
		s.finishLookup(ctx, lookupOutcome{
			action:  audit.ActionAreaCodeLookup,
			domain:  models.DomainAreaCode,
			code:    code.Digits(),
			outcome: outcomeFromErr(err),
			started: start,
		})
		return nil, err
	}

	span.SetAttributes(attribute.String("lookup.state", state.String()))
	s.finishLookup(ctx, lookupOutcome{
		action:  audit.ActionAreaCodeLookup,
		domain:  models.DomainAreaCode,
		code:    code.Digits(),
		state:   state,
		outcome: audit.OutcomeResolved,
		started: start,
	})
	return &models.Resolution{
		Domain:    models.DomainAreaCode,
		Code:      code.String(),
		State:     state,
		StateName: state.Name(),
		Rule:      s.matchedRule(s.areaCode, state, code.Digits()),
	}, nil
}

// ResolvePhoneNumber derives the area code from a NANP phone number and
// resolves that. The returned resolution carries both the E.164 form and the
// derived area code.
func (s *Service) ResolvePhoneNumber(ctx context.Context, raw string) (*models.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.ResolvePhoneNumber",
		trace.WithAttributes(attribute.String("lookup.domain", string(models.DomainPhone))))
	defer span.End()

	start := time.Now()
	number, err := domain.ParsePhoneNumber(raw)
	if err != nil {
		span.RecordError(err)
		s.finishLookup(ctx, lookupOutcome{
			action:  audit.ActionPhoneLookup,
			domain:  models.DomainPhone,
			outcome: audit.OutcomeInvalid,
			started: start,
		})
		return nil, err
	}

	areaCode := number.AreaCode()
	state, err := s.areaCode.FindRegion(areaCode.Digits())
	if err != nil {
		span.RecordError(err)
		s.finishLookup(ctx, lookupOutcome{
			action:  audit.ActionPhoneLookup,
			domain:  models.DomainPhone,
			code:    areaCode.Digits(),
			outcome: outcomeFromErr(err),
			started: start,
		})
		return nil, err
	}

	span.SetAttributes(attribute.String("lookup.state", state.String()))
	s.finishLookup(ctx, lookupOutcome{
		action:  audit.ActionPhoneLookup,
		domain:  models.DomainPhone,
		code:    areaCode.Digits(),
		state:   state,
		outcome: audit.OutcomeResolved,
		started: start,
	})
	return &models.Resolution{
		Domain:      models.DomainPhone,
		Code:        areaCode.String(),
		State:       state,
		StateName:   state.Name(),
		Rule:        s.matchedRule(s.areaCode, state, areaCode.Digits()),
		PhoneNumber: number.E164(),
	}, nil
}

// PostalCodesForState lists the postal code rules issued to a state.
func (s *Service) PostalCodesForState(ctx context.Context, rawState string) ([]models.CodeRuleDescriptor, error) {
	return s.rulesForState(ctx, s.postal, models.DomainPostal, rawState)
}

// AreaCodesForState lists the area code rules issued to a state.
func (s *Service) AreaCodesForState(ctx context.Context, rawState string) ([]models.CodeRuleDescriptor, error) {
	return s.rulesForState(ctx, s.areaCode, models.DomainAreaCode, rawState)
}

func (s *Service) rulesForState(ctx context.Context, ix *region.Index, codeDomain models.CodeDomain, rawState string) ([]models.CodeRuleDescriptor, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.RulesForState",
		trace.WithAttributes(attribute.String("lookup.domain", string(codeDomain))))
	defer span.End()

	state, err := domain.ParseState(rawState)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rules, err := ix.RulesForRegion(state)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	descriptors := make([]models.CodeRuleDescriptor, len(rules))
	for i, rule := range rules {
		descriptors[i] = models.DescribeRule(rule)
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionRulesListed,
		Domain:  string(codeDomain),
		State:   state.String(),
		Outcome: audit.OutcomeResolved,
	})
	return descriptors, nil
}

// ResolveBatch resolves up to MaxBatchSize items with bounded concurrency.
// Item failures land in the item's result; the batch only errors on an
// invalid request shape.
func (s *Service) ResolveBatch(ctx context.Context, items []models.BatchItem) ([]models.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.ResolveBatch",
		trace.WithAttributes(attribute.Int("lookup.batch_size", len(items))))
	defer span.End()

	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "batch cannot be empty")
	}
	if len(items) > MaxBatchSize {
		return nil, dErrors.Newf(dErrors.CodeValidation, "batch cannot exceed %d items", MaxBatchSize)
	}

	// The group is a bounded worker pool here, not a failure collector:
	// item errors land in the item's result slot.
	results := make([]models.BatchResult, len(items))
	g := new(errgroup.Group)
	g.SetLimit(batchConcurrency)
	for i, item := range items {
		g.Go(func() error {
			results[i] = s.resolveItem(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	resolved := 0
	for _, result := range results {
		if result.Resolved() {
			resolved++
		}
	}
	span.SetAttributes(attribute.Int("lookup.batch_resolved", resolved))
	s.emit(ctx, audit.Event{
		Action:  audit.ActionBatchResolve,
		Outcome: audit.OutcomeResolved,
	})
	return results, nil
}

func (s *Service) resolveItem(ctx context.Context, item models.BatchItem) models.BatchResult {
	result := models.BatchResult{Domain: item.Domain, Code: item.Code}

	var res *models.Resolution
	var err error
	switch item.Domain {
	case models.DomainPostal:
		res, err = s.ResolvePostalCode(ctx, item.Code)
	case models.DomainAreaCode:
		res, err = s.ResolveAreaCode(ctx, item.Code)
	case models.DomainPhone:
		res, err = s.ResolvePhoneNumber(ctx, item.Code)
	default:
		err = dErrors.Newf(dErrors.CodeValidation, "unknown code domain %q", string(item.Domain))
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.State = res.State
	result.StateName = res.StateName
	return result
}

// ValidateAddress checks that an address's postal code resolves to the
// address's own state. An unresolvable postal code makes the address
// inconsistent, not erroneous.
func (s *Service) ValidateAddress(ctx context.Context, addr domain.Address) (*models.AddressValidation, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.ValidateAddress")
	defer span.End()

	postal := addr.PostalCode()
	validation := &models.AddressValidation{Address: addr}

	state, err := s.postal.FindRegion(postal.Digits())
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			span.RecordError(err)
			return nil, err
		}
		s.recordMiss(ctx, models.DomainPostal, postal.Digits())
		if s.metrics != nil {
			s.metrics.ObserveMiss(string(models.DomainPostal))
		}
		validation.Reason = "postal code " + postal.String() + " does not match any state"
		s.emit(ctx, audit.Event{
			Action:  audit.ActionAddressValidate,
			Domain:  string(models.DomainPostal),
			Code:    postal.Digits(),
			Outcome: audit.OutcomeMiss,
		})
		return validation, nil
	}

	validation.ExpectedState = state
	if state == addr.State() {
		validation.Consistent = true
	} else {
		validation.Reason = "postal code " + postal.String() + " belongs to " + state.Name() + ", not " + addr.State().Name()
	}

	span.SetAttributes(attribute.Bool("lookup.consistent", validation.Consistent))
	s.emit(ctx, audit.Event{
		Action:  audit.ActionAddressValidate,
		Domain:  string(models.DomainPostal),
		Code:    postal.Digits(),
		State:   state.String(),
		Outcome: audit.OutcomeResolved,
	})
	return validation, nil
}

// lookupOutcome gathers what finishLookup needs to close out one lookup.
type lookupOutcome struct {
	action  audit.Action
	domain  models.CodeDomain
	code    string
	state   domain.State
	outcome string
	started time.Time
}

// finishLookup records metrics, the miss log and the audit trail for one
// lookup. Misses are only logged for well-formed codes; unparseable input
// carries no code worth reviewing.
func (s *Service) finishLookup(ctx context.Context, o lookupOutcome) {
	if s.metrics != nil {
		s.metrics.ObserveLookup(string(o.domain), o.outcome, time.Since(o.started))
	}
	if o.outcome == audit.OutcomeMiss {
		if s.metrics != nil {
			s.metrics.ObserveMiss(string(o.domain))
		}
		s.recordMiss(ctx, o.domain, o.code)
	}

	event := audit.Event{
		Action:  o.action,
		Domain:  string(o.domain),
		Code:    o.code,
		Outcome: o.outcome,
	}
	if o.state != "" {
		event.State = o.state.String()
	}
	s.emit(ctx, event)
}

// matchedRule re-probes the winning state's rules to report which one fired.
// FindRegion guarantees one of them matches.
func (s *Service) matchedRule(ix *region.Index, state domain.State, code string) *models.CodeRuleDescriptor {
	rules, err := ix.RulesForRegion(state)
	if err != nil {
		return nil
	}
	for _, rule := range rules {
		if rule.Matches(code) {
			d := models.DescribeRule(rule)
			return &d
		}
	}
	return nil
}

func (s *Service) recordMiss(ctx context.Context, codeDomain models.CodeDomain, code string) {
	if s.misses == nil {
		return
	}
	miss := models.Miss{
		Domain:     codeDomain,
		Code:       code,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   anonymizedIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if err := s.misses.Record(ctx, miss); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record lookup miss",
			"domain", miss.Domain,
			"code", miss.Code,
			"error", err,
		)
	}
}

// emit publishes an audit event, filling request-scoped fields. Audit is
// observability here, so failures are logged and swallowed.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	event.Caller = requestcontext.CallerName(ctx)
	event.ClientIP = anonymizedIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)
	event.APIVersion = requestcontext.APIVersion(ctx).String()
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

// anonymizedIP truncates the request's client IP before it reaches any
// store or audit sink. The raw address stays inside the request context,
// where only rate limiting reads it.
func anonymizedIP(ctx context.Context) string {
	ip := requestcontext.ClientIP(ctx)
	if ip == "" {
		return ""
	}
	return privacy.AnonymizeIP(ip)
}

func outcomeFromErr(err error) string {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return audit.OutcomeMiss
	}
	return audit.OutcomeInvalid
}
