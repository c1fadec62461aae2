// Package lifecycle owns the status transitions of requests and their orders:
// who may move a request where, and how the move is written atomically.
package lifecycle

import (
	"context"
	"time"

	"carematch/internal/app/events"
	"carematch/internal/app/repository"
	"carematch/internal/app/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "carematch/lifecycle"

// AvatarSigner turns a stored avatar key into a URL a client can fetch.
type AvatarSigner interface {
	AvatarURL(ctx context.Context, key string) (string, error)
}

type Engine struct {
	repo      *repository.Repository
	publisher events.Publisher
	avatars   AvatarSigner
	strict    bool
	now       func() time.Time
	loc       *time.Location
	validate  *validator.Validate

	tracer       trace.Tracer
	transitions  metric.Int64Counter
	claims       metric.Int64Counter
	creates      metric.Int64Counter
	inconsistent metric.Int64Counter
}

type Option func(*Engine)

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithAvatarSigner(s AvatarSigner) Option {
	return func(e *Engine) { e.avatars = s }
}

// WithStrictOrderConsistency makes a matched request without a live order
// fail with ErrInconsistentState instead of being updated alone.
func WithStrictOrderConsistency(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone in which "today" is evaluated for new requests.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func New(repo *repository.Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		publisher: events.Noop{},
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.validate = newValidator(e.today)

	m := telemetry.Meter(scopeName)
	e.transitions, _ = m.Int64Counter("carematch.lifecycle.transitions",
		metric.WithDescription("Status transitions applied, by target and outcome"),
	)
	e.claims, _ = m.Int64Counter("carematch.lifecycle.claims",
		metric.WithDescription("Claim attempts, by outcome"),
	)
	e.creates, _ = m.Int64Counter("carematch.lifecycle.creates",
		metric.WithDescription("Request creations, by outcome"),
	)
	e.inconsistent, _ = m.Int64Counter("carematch.lifecycle.inconsistent_state",
		metric.WithDescription("Matched requests found without a live order"),
	)
	e.tracer = telemetry.Tracer(scopeName)
	return e
}

func (e *Engine) today() time.Time {
	now := e.now().In(e.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
}

func (e *Engine) start(ctx context.Context, name string, caller Caller, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String("caller.subject", caller.Subject),
		attribute.String("caller.role", caller.Role.String()),
	}, attrs...)
	return e.tracer.Start(ctx, "lifecycle."+name, trace.WithAttributes(all...))
}

// finish ends the span and counts the call on counter.
func (e *Engine) finish(ctx context.Context, span trace.Span, counter metric.Int64Counter, err error, attrs ...attribute.KeyValue) {
	attrs = append(attrs, attribute.String("outcome", outcome(err)))
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (e *Engine) publish(ctx context.Context, ev events.Event) {
	if err := e.publisher.Publish(ctx, ev); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":      ev.Type,
			"request_id": ev.RequestID,
		}).Warn("failed to publish lifecycle event")
	}
}

func logOutcome(fields logrus.Fields, err error, msg string) {
	entry := logrus.WithFields(fields).WithField("outcome", outcome(err))
	switch outcome(err) {
	case "ok":
		entry.Info(msg)
	case "store_unavailable":
		entry.WithError(err).Error(msg)
	default:
		entry.WithError(err).Info(msg)
	}
}
