package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
	"github.com/leapstack-labs/noticeboard/pkg/store"
)

const (
	assetsTable     = "assets"
	postAssetsTable = "post_assets"
	assetOwner      = "user_id"
)

type assetInput struct {
	URL       string `json:"url" validate:"required,url,max=2048"`
	MimeType  string `json:"mime_type" validate:"required,max=128"`
	SizeBytes int64  `json:"size_bytes" validate:"gte=0"`
}

func (s *Service) assetCreate(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var req assetInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}
	res := s.store.Insert(ctx, assetsTable, core.Row{
		"id":         s.newID(),
		"user_id":    rc.CallerID(),
		"url":        req.URL,
		"mime_type":  req.MimeType,
		"size_bytes": req.SizeBytes,
		"created_at": s.timestamp(),
	})
	return resultReply(res, "asset not found")
}

func (s *Service) assetGet(ctx context.Context, _ action.RequestContext, id string, in action.Input) (action.Reply, error) {
	id = targetID(id, in)
	if err := requireID(id, "asset"); err != nil {
		return action.Reply{}, err
	}
	row, err := s.store.FindOneOrFail(ctx, assetsTable, query.Where{query.Eq("id", id)}, "asset not found")
	if err != nil {
		return action.Reply{}, err
	}
	return action.Reply{Data: row}, nil
}

func (s *Service) assetList(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	res := s.store.List(ctx, store.ListQuery{
		Table: assetsTable,
		Where: query.Where{query.Eq("user_id", rc.CallerID())},
		Page:  rc.Page(in),
	})
	return listReply(res, nil), nil
}

func (s *Service) assetDelete(ctx context.Context, rc action.RequestContext, id string, in action.Input) (action.Reply, error) {
	id = targetID(id, in)
	if _, err := s.fetchOwned(ctx, rc, "asset_delete", assetsTable, id, "asset not found"); err != nil {
		return action.Reply{}, err
	}
	res := s.store.Delete(ctx, assetsTable, query.Where{query.Eq("id", id)}, 1)
	if res.Err != nil {
		return action.Reply{Error: res.Err.Error()}, nil
	}
	if res.RowCount == 0 {
		return action.Reply{}, core.NotFound("asset not found")
	}
	return action.Reply{Data: Deleted{ID: id, Deleted: res.RowCount}}, nil
}

// PostWithAssets is the reply of post_create. Asset links are written after
// the post and are not rolled back: LinkErrors lists the ones that failed.
type PostWithAssets struct {
	Post       core.Row `json:"post"`
	AssetIDs   []string `json:"asset_ids"`
	LinkErrors []string `json:"link_errors,omitempty"`
}

func (s *Service) postCreate(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var req postInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}
	res, err := s.insertContent(ctx, rc, posts, in)
	if err != nil {
		return action.Reply{}, err
	}
	reply, err := resultReply(res, posts.notFound())
	if err != nil || reply.Error != "" {
		return reply, err
	}

	post := res.First()
	out := PostWithAssets{Post: post, AssetIDs: []string{}}
	for _, assetID := range req.AssetIDs {
		if err := s.linkAsset(ctx, rc, post.String("id"), assetID); err != nil {
			s.logger.Warn("failed to link asset",
				slog.String("post", post.String("id")),
				slog.String("asset", assetID),
				slog.String("error", err.Error()))
			out.LinkErrors = append(out.LinkErrors, fmt.Sprintf("%s: %v", assetID, err))
			continue
		}
		out.AssetIDs = append(out.AssetIDs, assetID)
	}
	return action.Reply{Data: out}, nil
}

// linkAsset attaches one of the caller's assets to a post.
func (s *Service) linkAsset(ctx context.Context, rc action.RequestContext, postID, assetID string) error {
	asset, err := s.store.FindOneOrFail(ctx, assetsTable, query.Where{query.Eq("id", assetID)}, "asset not found")
	if err != nil {
		return err
	}
	if err := authz.Check(authz.RequiresCallerOwnsRow, rc.Caller, rc.TokenErr, assetID, asset, assetOwner); err != nil {
		return err
	}
	res := s.store.Insert(ctx, postAssetsTable, core.Row{
		"post_id":    postID,
		"asset_id":   assetID,
		"created_at": s.timestamp(),
	})
	return res.Err
}
