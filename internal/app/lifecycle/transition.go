package lifecycle

import (
	"fmt"
	"strings"

	"carematch/internal/app/ds"
)

// Transition names a status change a caller may ask for.
type Transition string

const (
	Claim    Transition = "claim"
	Confirm  Transition = "confirmed"
	Complete Transition = "completed"
	Cancel   Transition = "canceled"
	Decline  Transition = "decline" // supporter releases the request
	Refusal  Transition = "refusal" // requester releases the supporter
)

type rule struct {
	from    []ds.RequestStatus
	request ds.RequestStatus
	order   ds.OrderStatus
	// release returns the request to the open pool.
	release bool
}

var rules = map[Transition]rule{
	Confirm: {
		from:    []ds.RequestStatus{ds.RequestMatched},
		request: ds.RequestConfirmed,
		order:   ds.OrderConfirmed,
	},
	Complete: {
		from:    []ds.RequestStatus{ds.RequestConfirmed},
		request: ds.RequestCompleted,
		order:   ds.OrderCompleted,
	},
	Cancel: {
		from:    []ds.RequestStatus{ds.RequestOpen, ds.RequestMatched, ds.RequestConfirmed},
		request: ds.RequestCanceled,
		order:   ds.OrderCanceled,
	},
	Decline: {
		from:    []ds.RequestStatus{ds.RequestMatched, ds.RequestConfirmed},
		request: ds.RequestOpen,
		order:   ds.OrderDecline,
		release: true,
	},
	Refusal: {
		from:    []ds.RequestStatus{ds.RequestOpen, ds.RequestMatched, ds.RequestConfirmed},
		request: ds.RequestOpen,
		order:   ds.OrderRefusal,
		release: true,
	},
}

// ParseTransition maps a requested target status onto a Transition. Claiming
// has its own operation and is rejected here, as is any unknown status.
func ParseTransition(s string) (Transition, error) {
	t := Transition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rules[t]; ok {
		return t, nil
	}
	if t == Claim || t == Transition(ds.RequestMatched) {
		return "", fmt.Errorf("%w: %q must go through claim", ErrInvalidTransition, s)
	}
	return "", fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, s)
}

func (r rule) allows(from ds.RequestStatus) bool {
	for _, s := range r.from {
		if s == from {
			return true
		}
	}
	return false
}

// keepsSupporter reports whether the request still carries its supporter
// after the transition.
func (r rule) keepsSupporter() bool {
	return r.request.HasSupporter()
}

// activeOrder reports whether an order in status s still backs a matched request.
func activeOrder(s ds.OrderStatus) bool {
	return s == ds.OrderMatched || s == ds.OrderConfirmed || s == ds.OrderCompleted
}
