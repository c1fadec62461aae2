package role

import (
	"fmt"
	"strings"
)

// Role is the closed set of caller roles. The zero value is not a valid role.
type Role uint8

const (
	Requester Role = iota + 1 // posts requests (care recipient)
	Supporter                 // claims and fulfils requests (volunteer)
)

// All lists every valid role.
var All = []Role{Requester, Supporter}

func (r Role) String() string {
	switch r {
	case Requester:
		return "requester"
	case Supporter:
		return "supporter"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r == Requester || r == Supporter
}

// Parse maps a wire name onto a Role. "user" is accepted as the legacy name
// for requesters.
func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "requester", "user":
		return Requester, nil
	case "supporter":
		return Supporter, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
