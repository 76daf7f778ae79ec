package workflow

import (
	"fmt"
	"strings"
)

// Role identifies an actor in the approval chain. The same values name the
// stage whose decision is awaited.
type Role string

const (
	RoleFieldOfficer Role = "field_officer"
	RoleManager      Role = "manager"
	RoleDirector     Role = "director"
	RoleChairperson  Role = "chairperson"
	RoleCEO          Role = "ceo"
)

var approvalOrder = []Role{
	RoleFieldOfficer,
	RoleManager,
	RoleDirector,
	RoleChairperson,
	RoleCEO,
}

var roleTitles = map[Role]string{
	RoleFieldOfficer: "Field Officer",
	RoleManager:      "Manager",
	RoleDirector:     "Director",
	RoleChairperson:  "Chairperson",
	RoleCEO:          "CEO",
}

// Roles returns the approval chain in decision order.
func Roles() []Role {
	return append([]Role(nil), approvalOrder...)
}

// ParseRole converts user input into a Role, ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is part of the approval chain
func (r Role) IsValid() bool {
	return r.Index() >= 0
}

// Index returns the position of the role in the chain, or -1.
func (r Role) Index() int {
	for i, role := range approvalOrder {
		if role == r {
			return i
		}
	}
	return -1
}

// Next returns the role that decides after r. The CEO has no successor.
func (r Role) Next() (Role, bool) {
	i := r.Index()
	if i < 0 || i == len(approvalOrder)-1 {
		return "", false
	}
	return approvalOrder[i+1], true
}

// Title returns the human readable role name used in messages.
func (r Role) Title() string {
	if t, ok := roleTitles[r]; ok {
		return t
	}
	return string(r)
}
