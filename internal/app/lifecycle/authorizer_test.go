package lifecycle

import (
	"testing"

	"carematch/internal/app/ds"
	"carematch/internal/app/role"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	open := &ds.Request{ID: 1, RequesterID: "u1", Status: ds.RequestOpen}
	matched := &ds.Request{ID: 2, RequesterID: "u1", Status: ds.RequestMatched, MatchedSupporterID: strPtr("s1")}

	tests := []struct {
		name   string
		t      Transition
		caller Caller
		req    *ds.Request
		want   bool
	}{
		{"owner cancels", Cancel, requester("u1"), matched, true},
		{"owner refuses", Refusal, requester("u1"), matched, true},
		{"stranger cancels", Cancel, requester("u2"), matched, false},
		{"requester confirms", Confirm, requester("u1"), matched, false},
		{"requester claims", Claim, requester("u1"), open, false},

		{"matched supporter confirms", Confirm, supporter("s1"), matched, true},
		{"matched supporter completes", Complete, supporter("s1"), matched, true},
		{"matched supporter declines", Decline, supporter("s1"), matched, true},
		{"other supporter confirms", Confirm, supporter("s2"), matched, false},
		{"supporter on unmatched", Decline, supporter("s1"), open, false},
		{"supporter cancels", Cancel, supporter("s1"), matched, false},
		{"supporter refuses", Refusal, supporter("s1"), matched, false},
		{"supporter claims", Claim, supporter("s2"), open, true},

		{"anonymous", Claim, Caller{Role: role.Supporter}, open, false},
		{"unknown role", Cancel, Caller{Subject: "u1", Role: role.Role(0)}, open, false},
		{"nil request", Claim, supporter("s1"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.t, tt.caller, tt.req))
		})
	}
}

func TestParseTransition(t *testing.T) {
	for _, s := range []string{"confirmed", "completed", "canceled", "decline", "refusal", " Confirmed "} {
		_, err := ParseTransition(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "claim", "matched", "open", "expired", "cancelled"} {
		_, err := ParseTransition(s)
		assert.ErrorIs(t, err, ErrInvalidTransition, s)
	}
}
