package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"carematch/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsOnDifferentRequestsDoNotInterfere(t *testing.T) {
	f := newFixture(t)

	const n = 20
	ids := make([]uint, n)
	for i := range ids {
		ids[i] = f.openRequest(t).ID
	}

	start := make(chan struct{})
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.engine.Claim(context.Background(), ids[i], supporter(fmt.Sprintf("s-%d", i)))
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "claim on request %d", ids[i])
		got := f.reload(t, ids[i])
		assert.Equal(t, ds.RequestMatched, got.Status)
		require.NotNil(t, got.MatchedSupporterID)
		assert.Equal(t, fmt.Sprintf("s-%d", i), *got.MatchedSupporterID)
	}
}

// confirmedRequest returns a request claimed and confirmed by s1.
func (f *fixture) confirmedRequest(t *testing.T) *ds.Request {
	t.Helper()
	ctx := context.Background()
	req := f.openRequest(t)
	_, err := f.engine.Claim(ctx, req.ID, supporter("s1"))
	require.NoError(t, err)
	_, err = f.engine.ApplyTransition(ctx, req.ID, "confirmed", supporter("s1"))
	require.NoError(t, err)
	return req
}

func TestConcurrentTransitionsOnOneRequest(t *testing.T) {
	type move struct {
		target string
		caller Caller
	}
	tests := []struct {
		name string
		a, b move
	}{
		{"decline vs complete", move{"decline", supporter("s1")}, move{"completed", supporter("s1")}},
		{"cancel vs complete", move{"canceled", requester("u1")}, move{"completed", supporter("s1")}},
		{"refusal vs complete", move{"refusal", requester("u1")}, move{"completed", supporter("s1")}},
	}

	const rounds = 5
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for round := 0; round < rounds; round++ {
				req := f.confirmedRequest(t)
				moves := []move{tt.a, tt.b}

				start := make(chan struct{})
				errs := make([]error, len(moves))
				var wg sync.WaitGroup
				for i, m := range moves {
					wg.Add(1)
					go func(i int, m move) {
						defer wg.Done()
						<-start
						_, errs[i] = f.engine.ApplyTransition(context.Background(), req.ID, m.target, m.caller)
					}(i, m)
				}
				close(start)
				wg.Wait()

				winner := -1
				for i, err := range errs {
					if err == nil {
						require.Equal(t, -1, winner, "round %d: both %s and %s succeeded", round, tt.a.target, tt.b.target)
						winner = i
						continue
					}
					assert.True(t,
						errorIsAny(err, ErrConflict, ErrForbidden, ErrInvalidTransition),
						"round %d: unexpected error %v", round, err)
				}
				require.NotEqual(t, -1, winner, "round %d: no transition applied: %v", round, errs)

				want := rules[Transition(moves[winner].target)]
				got := f.reload(t, req.ID)
				assert.Equal(t, want.request, got.Status)
				assert.Equal(t, want.request.HasSupporter(), got.MatchedSupporterID != nil)

				order, err := f.repo.GetOrder(req.ID, "s1")
				require.NoError(t, err)
				assert.Equal(t, want.order, order.Status)
			}
		})
	}
}

func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
