// Package authz resolves callers from bearer tokens and applies protection tiers.
package authz

import (
	"strings"

	"github.com/leapstack-labs/noticeboard/pkg/core"
)

// Caller is the identity resolved from a request's bearer token.
type Caller struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Protection is a set of tiers gating an action. The zero value is Public.
type Protection uint8

// Public actions run for anyone.
const Public Protection = 0

// Protection tiers, checked in declaration order.
const (
	// RequiresCaller rejects anonymous requests.
	RequiresCaller Protection = 1 << iota
	// RequiresCallerEqualsTargetID requires the caller to be the subject id of the request.
	RequiresCallerEqualsTargetID
	// RequiresCallerIsSelf marks actions on the caller's own record; it requires a caller.
	RequiresCallerIsSelf
	// RequiresCallerOwnsRow requires the caller to own a previously fetched row.
	RequiresCallerOwnsRow
)

var tierNames = []struct {
	tier Protection
	name string
}{
	{RequiresCaller, "caller"},
	{RequiresCallerEqualsTargetID, "caller=target"},
	{RequiresCallerIsSelf, "self"},
	{RequiresCallerOwnsRow, "owner"},
}

// Has reports whether every tier in t is part of p.
func (p Protection) Has(t Protection) bool {
	return t != 0 && p&t == t
}

func (p Protection) String() string {
	if p == Public {
		return "public"
	}
	var names []string
	for _, tn := range tierNames {
		if p.Has(tn.tier) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "+")
}

// Check applies the tiers of p in fixed order and returns nil when the
// request may proceed. tokenErr is the reason the caller could not be
// resolved, if any. The ownership tier is applied only when row is not nil:
// the caller must fetch the row before asking.
func Check(p Protection, caller *Caller, tokenErr error, targetID string, row core.Row, ownerColumn string) error {
	if p.Has(RequiresCaller) && caller == nil {
		return unauthorized(tokenErr)
	}
	if p.Has(RequiresCallerEqualsTargetID) {
		if caller == nil {
			return unauthorized(tokenErr)
		}
		if caller.ID != targetID {
			return core.Forbidden("caller may only act on their own record")
		}
	}
	if p.Has(RequiresCallerIsSelf) && caller == nil {
		return unauthorized(tokenErr)
	}
	if p.Has(RequiresCallerOwnsRow) && row != nil {
		if caller == nil {
			return unauthorized(tokenErr)
		}
		if ownerColumn == "" {
			ownerColumn = DefaultOwnerColumn
		}
		if row.String(ownerColumn) != caller.ID {
			return core.Forbidden("caller does not own this record")
		}
	}
	return nil
}

// DefaultOwnerColumn is the column holding a row's owner id.
const DefaultOwnerColumn = "created_by"

func unauthorized(tokenErr error) error {
	if tokenErr != nil {
		return core.Wrap(core.KindUnauthorized, tokenErr.Error(), tokenErr)
	}
	return core.Unauthorized("authentication required")
}
