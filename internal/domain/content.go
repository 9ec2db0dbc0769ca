package domain

import (
	"context"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
	"github.com/leapstack-labs/noticeboard/pkg/store"
)

// contentKind describes one authored content table (posts, adverts, articles).
// Every kind shares slug, ownership and audit columns; fields and filters
// supply the kind-specific parts.
type contentKind struct {
	// Name prefixes the action names: post, advert, article
	Name  string
	Table string
	// Create decodes the kind-specific columns of a new row. The title is
	// returned separately for slug derivation.
	Create func(in action.Input) (title string, cols core.Row, err error)
	// Update decodes changed columns; title is nil when unchanged.
	Update func(in action.Input) (title *string, cols core.Row, err error)
	// Filter adds kind-specific list conditions.
	Filter func(rc action.RequestContext, in action.Input, where query.Where) query.Where
	// Visible hides a fetched row from the caller; nil shows every row.
	Visible func(rc action.RequestContext, row core.Row) bool
}

func (k contentKind) action(op string) string { return k.Name + "_" + op }

func (k contentKind) notFound() string { return k.Name + " not found" }

// insertContent stores a new row of kind k owned by the caller.
func (s *Service) insertContent(ctx context.Context, rc action.RequestContext, k contentKind, in action.Input) (*store.Result, error) {
	title, row, err := k.Create(in)
	if err != nil {
		return nil, err
	}
	id := s.newID()
	now := s.timestamp()
	row["id"] = id
	row["title"] = title
	row["slug"] = slugFor(title, id)
	row["created_by"] = rc.CallerID()
	row["updated_by"] = rc.CallerID()
	row["created_at"] = now
	row["updated_at"] = now
	return s.store.Insert(ctx, k.Table, row), nil
}

func (s *Service) createContent(k contentKind) action.Handler {
	return func(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
		res, err := s.insertContent(ctx, rc, k, in)
		if err != nil {
			return action.Reply{}, err
		}
		return resultReply(res, k.notFound())
	}
}

// getContent looks a row up by id, or by the "slug" input when no id is given.
func (s *Service) getContent(k contentKind) action.Handler {
	return func(ctx context.Context, rc action.RequestContext, id string, in action.Input) (action.Reply, error) {
		id = targetID(id, in)
		var where query.Where
		switch slug, _ := in["slug"].(string); {
		case id != "":
			where = query.Where{query.Eq("id", id)}
		case slug != "":
			where = query.Where{query.Eq("slug", slug)}
		default:
			return action.Reply{}, core.BadRequest("%s id or slug is required", k.Name)
		}
		row, err := s.store.FindOneOrFail(ctx, k.Table, where, k.notFound())
		if err != nil {
			return action.Reply{}, err
		}
		if k.Visible != nil && !k.Visible(rc, row) {
			return action.Reply{}, core.NotFound(k.notFound())
		}
		return action.Reply{Data: row}, nil
	}
}

func (s *Service) listContent(k contentKind) action.Handler {
	return func(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
		var where query.Where
		if by, ok := in["created_by"].(string); ok && by != "" {
			where = where.And(query.Eq("created_by", by))
		}
		if k.Filter != nil {
			where = k.Filter(rc, in, where)
		}
		res := s.store.List(ctx, store.ListQuery{Table: k.Table, Where: where, Page: rc.Page(in)})
		return listReply(res, nil), nil
	}
}

// fetchOwned loads the row addressed by id and applies the action's
// ownership tier to it.
func (s *Service) fetchOwned(ctx context.Context, rc action.RequestContext, name, table, id, notFound string) (core.Row, error) {
	if err := requireID(id, "target"); err != nil {
		return nil, err
	}
	row, err := s.store.FindOneOrFail(ctx, table, query.Where{query.Eq("id", id)}, notFound)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(name, rc, id, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) updateContent(k contentKind) action.Handler {
	return func(ctx context.Context, rc action.RequestContext, id string, in action.Input) (action.Reply, error) {
		id = targetID(id, in)
		title, changes, err := k.Update(in)
		if err != nil {
			return action.Reply{}, err
		}
		if changes == nil {
			changes = core.Row{}
		}
		if len(changes) == 0 && title == nil {
			return action.Reply{}, core.BadRequest("nothing to update")
		}
		if _, err := s.fetchOwned(ctx, rc, k.action("update"), k.Table, id, k.notFound()); err != nil {
			return action.Reply{}, err
		}

		if title != nil {
			changes["title"] = *title
			changes["slug"] = slugFor(*title, id)
		}
		changes["updated_at"] = s.timestamp()
		changes["updated_by"] = rc.CallerID()

		res := s.store.Update(ctx, k.Table, query.Where{query.Eq("id", id)}, changes, 1)
		return resultReply(res, k.notFound())
	}
}

func (s *Service) deleteContent(k contentKind) action.Handler {
	return func(ctx context.Context, rc action.RequestContext, id string, in action.Input) (action.Reply, error) {
		id = targetID(id, in)
		if _, err := s.fetchOwned(ctx, rc, k.action("delete"), k.Table, id, k.notFound()); err != nil {
			return action.Reply{}, err
		}
		res := s.store.Delete(ctx, k.Table, query.Where{query.Eq("id", id)}, 1)
		if res.Err != nil {
			return action.Reply{Error: res.Err.Error()}, nil
		}
		if res.RowCount == 0 {
			return action.Reply{}, core.NotFound(k.notFound())
		}
		return action.Reply{Data: Deleted{ID: id, Deleted: res.RowCount}}, nil
	}
}

// Deleted reports a removed row.
type Deleted struct {
	ID      string `json:"id"`
	Deleted int64  `json:"deleted"`
}
