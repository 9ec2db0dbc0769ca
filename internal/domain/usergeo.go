package domain

import (
	"context"
	"math"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
	"github.com/leapstack-labs/noticeboard/pkg/store"
)

const userGeoTable = "user_geo"

// kmPerDegree is the length of one degree of latitude.
const kmPerDegree = 111.32

type geoInput struct {
	Lat   *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng   *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Label string   `json:"label" validate:"max=120"`
}

type geoSearchInput struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng      float64 `json:"lng" validate:"gte=-180,lte=180"`
	RadiusKm float64 `json:"radius_km" validate:"gt=0,lte=500"`
}

// BoundingBox is a lat/lng rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBoxAround returns the box enclosing a circle of radiusKm around
// (lat, lng). Near the poles the box spans every longitude.
// Boxes crossing the antimeridian are clipped to [-180, 180].
func BoundingBoxAround(lat, lng, radiusKm float64) BoundingBox {
	dLat := radiusKm / kmPerDegree
	box := BoundingBox{
		MinLat: math.Max(lat-dLat, -90),
		MaxLat: math.Min(lat+dLat, 90),
		MinLng: -180,
		MaxLng: 180,
	}
	if cos := math.Cos(lat * math.Pi / 180); cos > 1e-6 {
		dLng := radiusKm / (kmPerDegree * cos)
		if dLng < 180 {
			box.MinLng = math.Max(lng-dLng, -180)
			box.MaxLng = math.Min(lng+dLng, 180)
		}
	}
	return box
}

// Where returns the conditions selecting rows inside the box.
func (b BoundingBox) Where() query.Where {
	return query.Where{
		query.Gte("lat", b.MinLat),
		query.Lte("lat", b.MaxLat),
		query.Gte("lng", b.MinLng),
		query.Lte("lng", b.MaxLng),
	}
}

// usergeoUpdate stores the caller's location, inserting it when no row exists yet.
func (s *Service) usergeoUpdate(ctx context.Context, _ action.RequestContext, id string, in action.Input) (action.Reply, error) {
	var req geoInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}
	now := s.timestamp()
	where := query.Where{query.Eq("user_id", id)}

	res := s.store.Update(ctx, userGeoTable, where, core.Row{
		"lat":        *req.Lat,
		"lng":        *req.Lng,
		"label":      req.Label,
		"updated_at": now,
	}, 1)
	if res.Err != nil {
		return action.Reply{Error: res.Err.Error()}, nil
	}
	if res.RowCount > 0 {
		return action.Reply{Data: res.First()}, nil
	}

	res = s.store.Insert(ctx, userGeoTable, core.Row{
		"user_id":    id,
		"lat":        *req.Lat,
		"lng":        *req.Lng,
		"label":      req.Label,
		"created_at": now,
		"updated_at": now,
	})
	return resultReply(res, "location not stored")
}

func (s *Service) usergeoGet(ctx context.Context, _ action.RequestContext, id string, in action.Input) (action.Reply, error) {
	id = targetID(id, in)
	if err := requireID(id, "user"); err != nil {
		return action.Reply{}, err
	}
	row, err := s.store.FindOneOrFail(ctx, userGeoTable, query.Where{query.Eq("user_id", id)}, "location not found")
	if err != nil {
		return action.Reply{}, err
	}
	return action.Reply{Data: row}, nil
}

func (s *Service) usergeoSearch(ctx context.Context, rc action.RequestContext, _ string, in action.Input) (action.Reply, error) {
	var req geoSearchInput
	if err := action.Bind(in, &req); err != nil {
		return action.Reply{}, err
	}
	box := BoundingBoxAround(req.Lat, req.Lng, req.RadiusKm)
	res := s.store.List(ctx, store.ListQuery{
		Table:   userGeoTable,
		Where:   box.Where(),
		Page:    rc.Page(in),
		OrderBy: []store.Order{{Column: "updated_at", Desc: true}},
	})
	return listReply(res, nil), nil
}
