package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
	"github.com/leapstack-labs/noticeboard/pkg/store"
	"golang.org/x/crypto/bcrypt"
)

const usersTable = "users"

var errBadCredentials = core.Unauthorized("invalid username or password")

type signupInput struct {
	Username    string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=80"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=80"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
}

// publicUser strips credentials from a users row.
func publicUser(row core.Row) core.Row {
	if row == nil {
		return nil
	}
	return row.Without("password_hash")
}

func (s *Service) userSignup(ctx context.Context, _ action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var req signupInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}
	username := strings.ToLower(req.Username)

	existing := s.store.Find(ctx, usersTable, query.Where{query.Eq("username", username)}, query.One)
	if existing.Err != nil {
		return action.Reply{Error: existing.Err.Error()}, nil
	}
	if existing.Row != nil {
		return action.Reply{}, core.BadRequest("username %s is already taken", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return action.Reply{}, core.BadRequest("unusable password: %v", err)
	}

	now := s.timestamp()
	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}
	res := s.store.Insert(ctx, usersTable, core.Row{
		"id":            s.newID(),
		"username":      username,
		"email":         strings.ToLower(req.Email),
		"password_hash": string(hash),
		"display_name":  displayName,
		"bio":           "",
		"created_at":    now,
		"updated_at":    now,
	})
	if res.Err != nil {
		return action.Reply{Error: res.Err.Error()}, nil
	}
	s.logger.Info("user signed up", "user", res.First().String("id"))
	return s.session(res.First())
}

func (s *Service) userLogin(ctx context.Context, _ action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var req loginInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}

	row, err := s.store.FindOneOrFail(ctx, usersTable, query.Where{query.Eq("username", strings.ToLower(req.Username))}, "user not found")
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return action.Reply{}, errBadCredentials
		}
		return action.Reply{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.String("password_hash")), []byte(req.Password)); err != nil {
		return action.Reply{}, errBadCredentials
	}
	return s.session(row)
}

func (s *Service) session(user core.Row) (action.Reply, error) {
	token, err := s.tokens.Issue(authz.Caller{ID: user.String("id"), Username: user.String("username")})
	if err != nil {
		return action.Reply{}, err
	}
	return action.Reply{Data: Session{User: publicUser(user), Token: token}}, nil
}

func (s *Service) userMe(ctx context.Context, rc action.RequestContext, _ string, _ action.Input) (action.Reply, error) {
	row, err := s.store.FindOneOrFail(ctx, usersTable, query.Where{query.Eq("id", rc.CallerID())}, "user not found")
	if err != nil {
		return action.Reply{}, err
	}
	return action.Reply{Data: publicUser(row)}, nil
}

func (s *Service) userGet(ctx context.Context, _ action.RequestContext, id string, in action.Input) (action.Reply, error) {
	id = targetID(id, in)
	if err := requireID(id, "user"); err != nil {
		return action.Reply{}, err
	}
	row, err := s.store.FindOneOrFail(ctx, usersTable, query.Where{query.Eq("id", id)}, "user not found")
	if err != nil {
		return action.Reply{}, err
	}
	return action.Reply{Data: publicUser(row)}, nil
}

func (s *Service) userList(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var where query.Where
	if q, ok := in["q"].(string); ok && strings.TrimSpace(q) != "" {
		where = where.And(query.Contains("username", strings.TrimSpace(q)))
	}
	res := s.store.List(ctx, store.ListQuery{Table: usersTable, Where: where, Page: rc.Page(in)})
	return listReply(res, publicUser), nil
}

func (s *Service) userUpdate(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var req profileInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}
	changes := core.Row{}
	if req.DisplayName != nil {
		changes["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		changes["bio"] = *req.Bio
	}
	if req.Email != nil {
		changes["email"] = strings.ToLower(*req.Email)
	}
	if len(changes) == 0 {
		return action.Reply{}, core.BadRequest("nothing to update")
	}
	changes["updated_at"] = s.timestamp()

	res := s.store.Update(ctx, usersTable, query.Where{query.Eq("id", rc.CallerID())}, changes, 1)
	reply, err := resultReply(res, "user not found")
	if row, ok := reply.Data.(core.Row); ok {
		reply.Data = publicUser(row)
	}
	return reply, err
}
