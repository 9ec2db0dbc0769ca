// Package action holds the registry of named operations and the dispatcher
// that authorizes and invokes them.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
	"github.com/leapstack-labs/noticeboard/pkg/store"
)

// Settings are the per-deployment values handlers need.
type Settings struct {
	DefaultLimit int
	MaxLimit     int
}

// RequestContext carries everything resolved for one request.
// It is passed explicitly to every handler.
type RequestContext struct {
	Caller   *authz.Caller
	TokenErr error
	Settings Settings
	Logger   *slog.Logger
}

// Page normalizes the offset and limit inputs of a listing request.
func (rc RequestContext) Page(in Input) query.Page {
	return query.NormalizePage(in["offset"], in["limit"], rc.Settings.DefaultLimit, rc.Settings.MaxLimit)
}

// CallerID returns the caller's id, or "" for anonymous requests.
func (rc RequestContext) CallerID() string {
	if rc.Caller == nil {
		return ""
	}
	return rc.Caller.ID
}

// Input is the untyped payload of a request.
type Input map[string]any

// Reply is what a handler returns. Store failures travel in Error;
// authorization and lookup failures are returned as errors instead.
type Reply struct {
	Data  any         `json:"data,omitempty"`
	Meta  *store.Meta `json:"meta,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Handler implements an action.
type Handler func(ctx context.Context, rc RequestContext, id string, in Input) (Reply, error)

// Action is a named operation with its protection.
type Action struct {
	Name        string
	Description string
	Protection  authz.Protection
	// OwnerColumn names the column checked by RequiresCallerOwnsRow; defaults to created_by.
	OwnerColumn string
	Handler     Handler
}

// Registry is the immutable set of actions known at startup.
type Registry struct {
	actions map[string]Action
}

// NewRegistry builds a registry, rejecting duplicate or incomplete actions.
func NewRegistry(actions ...Action) (*Registry, error) {
	r := &Registry{actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		if a.Name == "" {
			return nil, fmt.Errorf("action without a name")
		}
		if a.Handler == nil {
			return nil, fmt.Errorf("action %s has no handler", a.Name)
		}
		if _, dup := r.actions[a.Name]; dup {
			return nil, fmt.Errorf("action %s registered twice", a.Name)
		}
		if a.OwnerColumn == "" {
			a.OwnerColumn = authz.DefaultOwnerColumn
		}
		r.actions[a.Name] = a
	}
	return r, nil
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Actions returns every registered action sorted by name.
func (r *Registry) Actions() []Action {
	out := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsAllowed checks whether the caller in rc may run the named action against
// targetID. row is the previously fetched record for ownership checks; with a
// nil row the ownership tier is not evaluated. It returns nil when allowed and
// a KindUnauthorized or KindForbidden error otherwise.
func (r *Registry) IsAllowed(name string, rc RequestContext, targetID string, row core.Row) error {
	a, ok := r.actions[name]
	if !ok {
		return core.UnknownAction(name)
	}
	return authz.Check(a.Protection, rc.Caller, rc.TokenErr, targetID, row, a.OwnerColumn)
}
