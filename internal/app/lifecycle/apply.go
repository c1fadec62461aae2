package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"carematch/internal/app/ds"
	"carematch/internal/app/events"
	"carematch/internal/app/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type TransitionResult struct {
	Request *ds.Request
	// Order is nil when no supporter was matched, or when the matched
	// supporter's order is missing (OrderMissing).
	Order        *ds.Order
	OrderMissing bool
}

// ApplyTransition moves request requestID to the requested status on behalf
// of caller. The request and its order change together or not at all.
func (e *Engine) ApplyTransition(ctx context.Context, requestID uint, requested string, caller Caller) (res *TransitionResult, err error) {
	ctx, span := e.start(ctx, "ApplyTransition", caller,
		attribute.Int64("request.id", int64(requestID)),
		attribute.String("target", requested),
	)
	fields := logrus.Fields{
		"request_id": requestID,
		"subject":    caller.Subject,
		"role":       caller.Role.String(),
		"target":     requested,
	}
	defer func() {
		e.finish(ctx, span, e.transitions, err, attribute.String("target", requested))
		logOutcome(fields, err, "transition")
	}()

	t, err := ParseTransition(requested)
	if err != nil {
		return nil, err
	}
	r := rules[t]

	var (
		released  string
		unchanged bool
	)
	err = e.repo.Transaction(ctx, func(tx *repository.Repository) error {
		req, err := tx.GetRequestByID(requestID)
		if err != nil {
			return err
		}
		if !Allowed(t, caller, req) {
			return fmt.Errorf("%w: %s %q may not apply %s to request %d", ErrForbidden, caller.Role, caller.Subject, t, req.ID)
		}
		if !r.allows(req.Status) {
			return fmt.Errorf("%w: %s is not reachable from %s", ErrInvalidTransition, t, req.Status)
		}

		res = &TransitionResult{}
		if r.release && req.Status == ds.RequestOpen && req.MatchedSupporterID == nil {
			// already in the pool with nobody to release
			res.Request = req
			unchanged = true
			return nil
		}

		order, err := e.matchedOrder(tx, req)
		if err != nil {
			return err
		}
		if req.MatchedSupporterID != nil && order == nil {
			if e.strict {
				return fmt.Errorf("%w: request %d is matched to %q without a live order", ErrInconsistentState, req.ID, *req.MatchedSupporterID)
			}
			res.OrderMissing = true
		}
		if req.MatchedSupporterID != nil {
			released = *req.MatchedSupporterID
		}

		supporter := req.MatchedSupporterID
		if !r.keepsSupporter() {
			supporter = nil
		}
		if err := tx.CompareAndSetRequest(req.ID, req.Status, req.MatchedSupporterID, r.request, supporter); err != nil {
			return err
		}

		if order != nil {
			if err := tx.CompareAndSetOrder(order.ID, order.Status, r.order); err != nil {
				return err
			}
			if res.Order, err = tx.GetOrder(order.RequestID, order.SupporterID); err != nil {
				return err
			}
		}

		res.Request, err = tx.GetRequestByID(req.ID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	if unchanged {
		return res, nil
	}

	if res.OrderMissing {
		e.inconsistent.Add(ctx, 1, metric.WithAttributes(attribute.String("target", string(t))))
		logrus.WithFields(logrus.Fields{
			"request_id":   requestID,
			"supporter_id": released,
			"target":       t,
		}).Warn("matched request has no live order; updated request only")
	}

	ev := events.New(events.RequestTransitioned, res.Request, caller.Subject, caller.Role.String(), e.now())
	if res.Order != nil {
		ev.OrderStatus = res.Order.Status
	}
	if released != "" {
		ev.SupporterID = released
	}
	e.publish(ctx, ev)

	return res, nil
}

// matchedOrder returns the live order backing req's current match, or nil
// when the request is unmatched or the order is missing.
func (e *Engine) matchedOrder(tx *repository.Repository, req *ds.Request) (*ds.Order, error) {
	if req.MatchedSupporterID == nil {
		return nil, nil
	}

	order, err := tx.GetOrder(req.ID, *req.MatchedSupporterID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	case !activeOrder(order.Status):
		return nil, nil
	}
	return order, nil
}
