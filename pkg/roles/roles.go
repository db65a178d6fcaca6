// Package roles gives every role value an explicit scope. User roles and
// organization roles share names like ADMIN, so a bare name never says which
// enum it belongs to.
package roles

import (
	"errors"
	"fmt"
	"strings"
)

type Scope string

const (
	ScopeUser         Scope = "user"
	ScopeOrganization Scope = "organization"
)

var ErrInvalidRef = errors.New("roles: invalid role reference")

type Ref struct {
	Scope Scope  `json:"scope"`
	Name  string `json:"name"`
}

func (r Ref) String() string {
	return string(r.Scope) + ":" + r.Name
}

// Parse reads "scope:NAME". A bare "NAME" takes the fallback scope.
func Parse(s string, fallback Scope) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, ErrInvalidRef
	}
	scope, name, found := strings.Cut(s, ":")
	if !found {
		return Ref{Scope: fallback, Name: strings.ToUpper(s)}, nil
	}
	switch Scope(strings.ToLower(scope)) {
	case ScopeUser, ScopeOrganization:
	default:
		return Ref{}, fmt.Errorf("%w: unknown scope %q", ErrInvalidRef, scope)
	}
	if strings.TrimSpace(name) == "" {
		return Ref{}, ErrInvalidRef
	}
	return Ref{Scope: Scope(strings.ToLower(scope)), Name: strings.ToUpper(strings.TrimSpace(name))}, nil
}

// In parses s and requires it to belong to scope.
func In(s string, scope Scope) (string, error) {
	ref, err := Parse(s, scope)
	if err != nil {
		return "", err
	}
	if ref.Scope != scope {
		return "", fmt.Errorf("%w: %s is not a %s role", ErrInvalidRef, ref, scope)
	}
	return ref.Name, nil
}
