// Package intake implements the inbound lead pipeline: validation, auth,
// rate limiting, dedupe and persistence for the public form and the agent
// API. The two entry points share dedupe and validation semantics but differ
// in auth and in how write failures surface.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sei-core/internal/airtable"
	stderrors "sei-core/internal/common/errors"
	"sei-core/internal/common/logger"
	"sei-core/internal/common/metrics"
	"sei-core/internal/intake/dedupe"
	"sei-core/internal/intake/ratelimit"
	"sei-core/internal/models"
)

const (
	channelPublic = "public"
	channelAgent  = "agent"

	outcomeSuccess     = "success"
	outcomeDeduped     = "deduped"
	outcomeRateLimited = "rate_limited"
	outcomeInvalid     = "invalid"
	outcomeWriteFailed = "write_failed"

	dedupeMessage = "Duplicate request detected, returning existing lead"
)

// LeadStore is the slice of the backing store the pipeline touches.
type LeadStore interface {
	ProfileByProfileID(ctx context.Context, profileID string) (*airtable.Record[airtable.ProfileFields], error)
	CreateLead(ctx context.Context, in airtable.LeadInput) (string, error)
}

// Notifier receives fire-and-forget operational mail: a heads-up for each
// newly written lead and an alert for swallowed write failures.
type Notifier interface {
	NotifyLeadCreated(ctx context.Context, channel, leadID string)
	NotifyWriteFailure(ctx context.Context, channel string, err error)
}

type noopNotifier struct{}

func (noopNotifier) NotifyLeadCreated(context.Context, string, string) {}
func (noopNotifier) NotifyWriteFailure(context.Context, string, error) {}

type Service struct {
	store    LeadStore
	limiter  ratelimit.Limiter
	dedupe   dedupe.Store
	cfg      Config
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
}

func NewService(store LeadStore, limiter ratelimit.Limiter, dedupeStore dedupe.Store, cfg Config, notifier Notifier, log logger.Logger) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		store:    store,
		limiter:  limiter,
		dedupe:   dedupeStore,
		cfg:      cfg,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock replaces the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitPublic handles an unauthenticated form submission. The address
// quota is charged before the body is parsed, so malformed floods throttle
// like any other traffic. A nil return is a success acknowledgment even
// when the store write failed: public-facing reliability wins over write
// confirmation, and the failure is logged, counted and alerted instead.
func (s *Service) SubmitPublic(ctx context.Context, clientAddr string, body []byte) *stderrors.StandardError {
	if !s.allow(ctx, "public:"+clientAddr, s.cfg.PublicLimit, s.cfg.PublicWindow, stderrors.ScopeAddress) {
		metrics.IntakeSubmissions.WithLabelValues(channelPublic, outcomeRateLimited).Inc()
		return stderrors.NewRateLimitedError(stderrors.ScopeAddress, "Too many requests. Please try again later.")
	}

	var req models.PublicQuoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.IntakeSubmissions.WithLabelValues(channelPublic, outcomeInvalid).Inc()
		return stderrors.NewValidationMessageError("Invalid JSON body", nil)
	}

	if verr := ValidatePublicPayload(req); verr != nil {
		metrics.IntakeSubmissions.WithLabelValues(channelPublic, outcomeInvalid).Inc()
		return verr
	}

	input := airtable.LeadInput{
		ProfileSlug:    req.ProfileSlug,
		Postcode:       req.Postcode,
		JobDescription: joinJobDescription(req.ServiceType, req.Notes),
		Source:         "website",
	}
	if req.Email != "" {
		input.CustomerEmail = req.Email
	} else {
		input.CustomerPhone = req.Phone
	}

	leadID, err := s.store.CreateLead(ctx, input)
	if err != nil {
		metrics.IntakeSubmissions.WithLabelValues(channelPublic, outcomeWriteFailed).Inc()
		metrics.LeadWriteFailures.WithLabelValues(channelPublic).Inc()
		s.logger.WithError(err).Error("public lead write failed, acknowledging anyway", map[string]interface{}{
			"profile_slug": req.ProfileSlug,
		})
		s.notifier.NotifyWriteFailure(ctx, channelPublic, err)
		return nil
	}

	metrics.IntakeSubmissions.WithLabelValues(channelPublic, outcomeSuccess).Inc()
	s.notifier.NotifyLeadCreated(ctx, channelPublic, leadID)
	return nil
}

// SubmitAgent handles one authenticated machine-to-machine submission.
// Step order is load-bearing: the key quota is charged before body parsing,
// the company quota only after structural validation succeeds, and the
// dedupe entry is recorded only after a successful write.
func (s *Service) SubmitAgent(ctx context.Context, authHeader string, body []byte) (*models.AgentQuoteResult, *stderrors.StandardError) {
	token, ok := AuthorizeBearer(authHeader, s.cfg.AgentKeys)
	if !ok {
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, "unauthorized").Inc()
		return nil, stderrors.NewUnauthorizedError("")
	}

	if !s.allow(ctx, "agent-key:"+token, s.cfg.KeyLimit, s.cfg.KeyWindow, stderrors.ScopeAPIKey) {
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, outcomeRateLimited).Inc()
		return nil, stderrors.NewRateLimitedError(stderrors.ScopeAPIKey,
			fmt.Sprintf("API key rate limit exceeded (%d/min)", s.cfg.KeyLimit))
	}

	payload, verr := ValidateAgentPayload(body)
	if verr != nil {
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, outcomeInvalid).Inc()
		return nil, verr
	}

	if !s.allow(ctx, "company:"+payload.CompanyID, s.cfg.CompanyLimit, s.cfg.CompanyWindow, stderrors.ScopeCompany) {
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, outcomeRateLimited).Inc()
		return nil, stderrors.NewRateLimitedError(stderrors.ScopeCompany,
			fmt.Sprintf("Company rate limit exceeded for %s (%d/hour)", payload.CompanyID, s.cfg.CompanyLimit))
	}

	agentRef := ""
	if payload.Source != nil {
		agentRef = payload.Source.AgentRef
	}
	fingerprint := Fingerprint(payload.CompanyID, agentRef,
		payload.Customer.Email, payload.Customer.Phone, payload.Customer.PostcodeFull)

	if leadID, found := s.lookupDedupe(ctx, fingerprint); found {
		metrics.DedupeHits.Inc()
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, outcomeDeduped).Inc()
		return &models.AgentQuoteResult{
			Ok:      true,
			Deduped: true,
			LeadID:  leadID,
			Message: dedupeMessage,
		}, nil
	}

	profile, err := s.store.ProfileByProfileID(ctx, payload.CompanyID)
	if err != nil {
		s.logger.WithError(err).Error("company existence check failed", map[string]interface{}{
			"company_id": payload.CompanyID,
		})
		return nil, stderrors.NewInternalError(err)
	}
	if profile == nil {
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, "not_found").Inc()
		return nil, stderrors.NewNotFoundError(payload.CompanyID)
	}

	customerName := payload.Customer.Name
	if customerName == "" {
		customerName = "Not provided"
	}
	leadID, err := s.store.CreateLead(ctx, airtable.LeadInput{
		ProfileRecordID: profile.ID,
		CustomerName:    customerName,
		CustomerEmail:   payload.Customer.Email,
		CustomerPhone:   payload.Customer.Phone,
		Postcode:        strings.TrimSpace(payload.Customer.PostcodeFull),
		JobDescription:  strings.TrimSpace(payload.Job.Description),
		Source:          "agent",
	})
	if err != nil {
		metrics.IntakeSubmissions.WithLabelValues(channelAgent, outcomeWriteFailed).Inc()
		metrics.LeadWriteFailures.WithLabelValues(channelAgent).Inc()
		return nil, stderrors.NewWriteFailedError(err)
	}

	if err := s.dedupe.Record(ctx, fingerprint, leadID); err != nil {
		s.logger.WithError(err).Warn("dedupe record failed", map[string]interface{}{
			"fingerprint": fingerprint,
		})
	}

	metrics.IntakeSubmissions.WithLabelValues(channelAgent, outcomeSuccess).Inc()
	s.notifier.NotifyLeadCreated(ctx, channelAgent, leadID)
	return &models.AgentQuoteResult{
		Ok:      true,
		Deduped: false,
		LeadID:  leadID,
		Company: &models.CompanySummary{
			ID:         payload.CompanyID,
			Name:       profile.Fields.Name,
			ProfileURL: "/profiles/" + profile.Fields.Slug,
		},
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// allow wraps the limiter with fail-open semantics: an unavailable limiter
// admits the request rather than taking intake down with it.
func (s *Service) allow(ctx context.Context, key string, limit int, window time.Duration, scope stderrors.RateLimitScope) bool {
	ok, err := s.limiter.Allow(ctx, key, limit, window)
	if err != nil {
		s.logger.WithError(err).Warn("rate limiter unavailable, failing open", map[string]interface{}{
			"scope": string(scope),
		})
		return true
	}
	if !ok {
		metrics.RateLimitRejections.WithLabelValues(string(scope)).Inc()
	}
	return ok
}

// lookupDedupe treats an unavailable dedupe store as a miss: a duplicate
// lead is preferable to a dropped one.
func (s *Service) lookupDedupe(ctx context.Context, key string) (string, bool) {
	leadID, found, err := s.dedupe.Lookup(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("dedupe lookup failed, treating as miss", map[string]interface{}{
			"fingerprint": key,
		})
		return "", false
	}
	return leadID, found
}

func joinJobDescription(serviceType, notes string) string {
	parts := []string{}
	if serviceType != "" {
		parts = append(parts, serviceType)
	}
	if notes != "" {
		parts = append(parts, notes)
	}
	return strings.Join(parts, " — ")
}
