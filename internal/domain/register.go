package domain

import (
	"fmt"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
)

const (
	callerOnly  = authz.RequiresCaller
	callerOwner = authz.RequiresCaller | authz.RequiresCallerOwnsRow
)

// Actions returns every action the service implements.
func (s *Service) Actions() []action.Action {
	actions := []action.Action{
		{Name: "user_signup", Description: "Create an account and start a session", Handler: s.userSignup},
		{Name: "user_login", Description: "Start a session", Handler: s.userLogin},
		{Name: "user_me", Description: "Profile of the caller", Protection: authz.RequiresCallerIsSelf, Handler: s.userMe},
		{Name: "user_get", Description: "Public profile by id", Handler: s.userGet},
		{Name: "user_list", Description: "List profiles", Handler: s.userList},
		{Name: "user_update", Description: "Update the caller's profile", Protection: authz.RequiresCallerIsSelf, Handler: s.userUpdate},

		{Name: "usergeo_update", Description: "Store the caller's location", Protection: authz.RequiresCaller | authz.RequiresCallerEqualsTargetID, Handler: s.usergeoUpdate},
		{Name: "usergeo_get", Description: "Location of a user", Handler: s.usergeoGet},
		{Name: "usergeo_search", Description: "Users within a radius", Handler: s.usergeoSearch},

		{Name: "post_create", Description: "Create a post, optionally linking assets", Protection: callerOnly, Handler: s.postCreate},

		{Name: "asset_create", Description: "Register an uploaded asset", Protection: callerOnly, Handler: s.assetCreate},
		{Name: "asset_get", Description: "Asset by id", Handler: s.assetGet},
		{Name: "asset_list", Description: "The caller's assets", Protection: callerOnly, Handler: s.assetList},
		{Name: "asset_delete", Description: "Delete one of the caller's assets", Protection: callerOwner, OwnerColumn: assetOwner, Handler: s.assetDelete},
	}

	for _, k := range []contentKind{posts, adverts, articles} {
		if k.Name != posts.Name {
			actions = append(actions, action.Action{
				Name: k.action("create"), Description: fmt.Sprintf("Create an %s", k.Name),
				Protection: callerOnly, Handler: s.createContent(k),
			})
		}
		actions = append(actions,
			action.Action{Name: k.action("get"), Description: fmt.Sprintf("%s by id or slug", k.Name), Handler: s.getContent(k)},
			action.Action{Name: k.action("list"), Description: fmt.Sprintf("List %ss, newest first", k.Name), Handler: s.listContent(k)},
			action.Action{Name: k.action("update"), Description: fmt.Sprintf("Update an owned %s", k.Name), Protection: callerOwner, Handler: s.updateContent(k)},
			action.Action{Name: k.action("delete"), Description: fmt.Sprintf("Delete an owned %s", k.Name), Protection: callerOwner, Handler: s.deleteContent(k)},
		)
	}
	return actions
}

// Register builds the action registry and binds the service to it.
func (s *Service) Register() (*action.Registry, error) {
	r, err := action.NewRegistry(s.Actions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to register actions: %w", err)
	}
	s.registry = r
	return r, nil
}
