// Package domain implements the noticeboard actions: user profiles,
// geolocation, posts, adverts, articles and assets.
package domain

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/store"
	"golang.org/x/crypto/bcrypt"
)

// Service holds the dependencies shared by every action handler.
type Service struct {
	store      *store.Store
	tokens     *authz.Tokens
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	bcryptCost int

	// set by Register; handlers use it for the ownership tier
	registry *action.Registry
}

// Config holds service configuration.
type Config struct {
	// Store is the row store every action reads and writes through
	Store *store.Store
	// Tokens issues bearer tokens on signup and login
	Tokens *authz.Tokens
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Now returns the current time (optional, defaults to time.Now)
	Now func() time.Time
	// NewID generates row ids (optional, defaults to random UUIDs)
	NewID func() string
	// BcryptCost is the password hashing cost (optional, defaults to bcrypt.DefaultCost)
	BcryptCost int
}

// New creates a service. Call Register to obtain the action registry.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("domain service requires a store")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("domain service requires a token issuer")
	}
	s := &Service{
		store:      cfg.Store,
		tokens:     cfg.Tokens,
		logger:     cfg.Logger,
		now:        cfg.Now,
		newID:      cfg.NewID,
		bcryptCost: cfg.BcryptCost,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	return s, nil
}

// Session is returned by signup and login. The HTTP layer stores Token in
// the session cookie.
type Session struct {
	User  core.Row `json:"user"`
	Token string   `json:"token"`
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// authorize applies the named action's protection to a fetched row.
func (s *Service) authorize(name string, rc action.RequestContext, id string, row core.Row) error {
	if s.registry == nil {
		return fmt.Errorf("action %s: service not registered", name)
	}
	return s.registry.IsAllowed(name, rc, id, row)
}

// targetID returns the path id, falling back to the "id" input.
func targetID(id string, in action.Input) string {
	if id != "" {
		return id
	}
	if v, ok := in["id"].(string); ok {
		return v
	}
	return ""
}

func requireID(id, what string) error {
	if id == "" {
		return core.BadRequest("%s id is required", what)
	}
	return nil
}

// resultReply turns a single-row mutation result into a reply.
// Store failures are carried in Reply.Error.
func resultReply(res *store.Result, notFound string) (action.Reply, error) {
	if res.Err != nil {
		return action.Reply{Error: res.Err.Error()}, nil
	}
	if res.RowCount == 0 {
		return action.Reply{}, core.NotFound(notFound)
	}
	return action.Reply{Data: res.First()}, nil
}

func listReply(res store.ListResult, shape func(core.Row) core.Row) action.Reply {
	if res.Err != nil {
		return action.Reply{Error: res.Err.Error()}
	}
	rows := make([]core.Row, 0, len(res.Rows))
	for _, r := range res.Rows {
		if shape != nil {
			r = shape(r)
		}
		rows = append(rows, r)
	}
	meta := res.Meta
	return action.Reply{Data: rows, Meta: &meta}
}
