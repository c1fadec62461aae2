package lifecycle

import (
	"carematch/internal/app/ds"
	"carematch/internal/app/role"
)

// Caller is the resolved identity behind an operation.
type Caller struct {
	Subject string
	Role    role.Role
}

// Allowed decides whether caller may apply t to req. It never touches storage.
//
//	requester: canceled, refusal        when caller owns the request
//	supporter: confirmed, completed,
//	           decline                  when caller is the matched supporter
//	supporter: claim                    always (the request is unowned)
func Allowed(t Transition, caller Caller, req *ds.Request) bool {
	if caller.Subject == "" || req == nil {
		return false
	}

	switch caller.Role {
	case role.Requester:
		switch t {
		case Cancel, Refusal:
			return caller.Subject == req.RequesterID
		}
		return false
	case role.Supporter:
		switch t {
		case Claim:
			return true
		case Confirm, Complete, Decline:
			return req.MatchedSupporterID != nil && *req.MatchedSupporterID == caller.Subject
		}
		return false
	}
	return false
}
