package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/domain/override"
	apperrors "github.com/target/control-panel-ui/internal/errors"
	"github.com/target/control-panel-ui/internal/observability/metrics"
	"github.com/target/control-panel-ui/internal/observability/notify"
	"github.com/target/control-panel-ui/internal/ports"
	"github.com/target/control-panel-ui/internal/validation"
)

const (
	msgAdminRequired  = "Administrator role required."
	msgOverrideFailed = "The override could not be delivered. Check the system status and try again."
	notifyTimeout     = 15 * time.Second
)

// OverrideServiceOptions groups dependencies for OverrideService.
type OverrideServiceOptions struct {
	Client ports.OverrideClient
	// Notifier is optional; accepted overrides are announced on it.
	Notifier  notify.Sink
	Observers Observers
}

// OverrideService submits emergency halt and resume requests and reports their outcome.
type OverrideService struct {
	client   ports.OverrideClient
	notifier notify.Sink
	audit    ports.AuditLog
	obs      Observers
	logger   *slog.Logger
	now      func() time.Time

	// StatusCache is invalidated after an accepted override. Optional.
	StatusCache ports.CacheRepository

	pending sync.WaitGroup
}

// NewOverrideService constructs a new OverrideService.
func NewOverrideService(opts OverrideServiceOptions) *OverrideService {
	if opts.Client == nil {
		panic("override service: client is required")
	}
	return &OverrideService{
		client:   opts.Client,
		notifier: opts.Notifier,
		audit:    opts.Observers.Audit,
		obs:      opts.Observers,
		logger:   loggerOrDefault(opts.Observers.Logger).With("component", "override_service"),
		now:      time.Now,
	}
}

// Halt submits an emergency halt.
func (s *OverrideService) Halt(ctx context.Context, sess domainauth.Session, req override.Request) override.Outcome {
	req.Action = override.ActionHalt
	return s.Submit(ctx, sess, req)
}

// Resume submits a resume after a halt.
func (s *OverrideService) Resume(ctx context.Context, sess domainauth.Session, req override.Request) override.Outcome {
	req.Action = override.ActionResume
	return s.Submit(ctx, sess, req)
}

// Submit validates and dispatches one override. No network call is made unless the request is
// valid and the session is an admin session; the request is never retried.
func (s *OverrideService) Submit(ctx context.Context, sess domainauth.Session, req override.Request) override.Outcome {
	start := s.now()
	req = req.Normalize()
	out := override.Outcome{Action: req.Action, State: override.StateIdle, At: start.UTC()}

	if fields := validation.Struct(req); fields.Any() {
		out.State = override.StateInvalid
		out.Message = "Fix the highlighted fields and submit again."
		out.FieldErrors = fields
		return out
	}

	if !sess.IsAdmin() {
		out.State = override.StateRejected
		out.Message = msgAdminRequired
		s.finish(ctx, sess, req, out, apperrors.Forbidden(msgAdminRequired), start)
		return out
	}

	out.State = override.StateSent
	recordAudit(ctx, s.audit, s.logger, s.auditEntry(sess, req, out))

	reply, err := s.client.SubmitOverride(ctx, sess.AccessToken, req)
	out = resolve(out, reply, err)
	s.finish(ctx, sess, req, out, err, start)

	if out.State == override.StateAccepted {
		s.invalidateStatus(ctx)
		s.announce(ctx, sess, req, out)
	}
	return out
}

// Wait blocks until pending announcements have been delivered or given up on.
func (s *OverrideService) Wait() { s.pending.Wait() }

// resolve maps the API result onto accepted, rejected or failed.
func resolve(out override.Outcome, reply override.Reply, err error) override.Outcome {
	if err == nil {
		out.State = override.StateAccepted
		out.Message = reply.Message
		out.Status = reply.Status
		out.InitiatedBy = reply.InitiatedBy
		if out.Message == "" {
			out.Message = "Override accepted."
		}
		return out
	}

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeForbidden,
		apperrors.ErrCodeInvalidInput, apperrors.ErrCodeConflict:
		out.State = override.StateRejected
		out.Message = apperrors.GetMessage(err)
		if out.Message == "" {
			out.Message = "The Control API rejected the override."
		}
	default:
		out.State = override.StateFailed
		out.Message = msgOverrideFailed
	}
	return out
}

func (s *OverrideService) finish(
	ctx context.Context,
	sess domainauth.Session,
	req override.Request,
	out override.Outcome,
	err error,
	start time.Time,
) {
	level := slog.LevelInfo
	if out.State == override.StateFailed {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "override submitted",
		"action", string(req.Action),
		"state", string(out.State),
		"user_id", sess.UserID,
		"error", err,
	)
	metrics.EmitOverride(s.obs.Metrics, metrics.OverrideMetric{
		Action:   string(req.Action),
		State:    string(out.State),
		Duration: s.now().Sub(start),
		Err:      err,
	})
	recordAudit(ctx, s.audit, s.logger, s.auditEntry(sess, req, out))
}

func (s *OverrideService) auditEntry(sess domainauth.Session, req override.Request, out override.Outcome) model.CreateAuditEntryRequest {
	action := model.AuditActionHalt
	if req.Action == override.ActionResume {
		action = model.AuditActionResume
	}
	detail := map[string]any{"reason": req.Reason}
	if out.Message != "" && out.State.Terminal() {
		detail["message"] = out.Message
	}
	return model.CreateAuditEntryRequest{
		ActorID:    sess.UserID,
		ActorEmail: sess.Email,
		Action:     action,
		Outcome:    string(out.State),
		Detail:     detail,
	}
}

func (s *OverrideService) invalidateStatus(ctx context.Context) {
	if s.StatusCache == nil {
		return
	}
	if _, err := s.StatusCache.Delete(ctx, StatusCacheKey); err != nil {
		s.logger.WarnContext(ctx, "status cache invalidation failed", "error", err)
	}
}

func (s *OverrideService) announce(ctx context.Context, sess domainauth.Session, req override.Request, out override.Outcome) {
	if s.notifier == nil {
		return
	}
	event := notify.OverrideEvent{
		Action:      string(req.Action),
		Status:      out.Status,
		Message:     out.Message,
		Reason:      req.Reason,
		InitiatedBy: out.InitiatedBy,
		OccurredAt:  out.At,
	}
	if event.InitiatedBy == "" {
		event.InitiatedBy = sess.Email
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendOverride(nctx, event); err != nil {
			s.logger.WarnContext(nctx, "override announcement failed", "action", event.Action, "error", err)
		}
	}()
}
