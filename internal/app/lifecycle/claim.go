package lifecycle

import (
	"context"
	"fmt"

	"carematch/internal/app/ds"
	"carematch/internal/app/events"
	"carematch/internal/app/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type ClaimResult struct {
	Request *ds.Request
	Order   *ds.Order
}

// Claim matches an open request to the calling supporter and records their
// order. Availability is re-checked inside the transaction; a claim that loses
// a race, or a supporter who already held an order on the request, gets
// ErrConflict.
func (e *Engine) Claim(ctx context.Context, requestID uint, caller Caller) (res *ClaimResult, err error) {
	ctx, span := e.start(ctx, "Claim", caller, attribute.Int64("request.id", int64(requestID)))
	fields := logrus.Fields{
		"request_id": requestID,
		"subject":    caller.Subject,
		"role":       caller.Role.String(),
		"target":     Claim,
	}
	defer func() {
		e.finish(ctx, span, e.claims, err)
		logOutcome(fields, err, "claim")
	}()

	err = e.repo.Transaction(ctx, func(tx *repository.Repository) error {
		req, err := tx.GetRequestByID(requestID)
		if err != nil {
			return err
		}
		if !Allowed(Claim, caller, req) {
			return fmt.Errorf("%w: only supporters can claim requests", ErrForbidden)
		}
		if req.Status != ds.RequestOpen || req.MatchedSupporterID != nil {
			return fmt.Errorf("%w: request %d is no longer available", ErrConflict, req.ID)
		}

		held, err := tx.HasOrder(req.ID, caller.Subject)
		if err != nil {
			return err
		}
		if held {
			return fmt.Errorf("%w: request %d was already released by %q", ErrConflict, req.ID, caller.Subject)
		}

		if err := tx.ClaimRequest(req.ID, caller.Subject); err != nil {
			return err
		}

		order := &ds.Order{
			RequestID:   req.ID,
			SupporterID: caller.Subject,
			Status:      ds.OrderMatched,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		res = &ClaimResult{Order: order}
		res.Request, err = tx.GetRequestByID(req.ID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	ev := events.New(events.RequestClaimed, res.Request, caller.Subject, caller.Role.String(), e.now())
	ev.OrderStatus = res.Order.Status
	e.publish(ctx, ev)

	return res, nil
}
