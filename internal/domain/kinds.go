package domain

import (
	"strings"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/query"
)

type postInput struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Body     string   `json:"body" validate:"max=20000"`
	AssetIDs []string `json:"asset_ids" validate:"max=20,dive,required"`
}

type postPatch struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=200"`
	Body  *string `json:"body" validate:"omitempty,max=20000"`
}

var posts = contentKind{
	Name:  "post",
	Table: "posts",
	Create: func(in action.Input) (string, core.Row, error) {
		var req postInput
		if err := action.Bind(in, &req); err != nil {
			return "", nil, err
		}
		return req.Title, core.Row{"body": req.Body}, nil
	},
	Update: func(in action.Input) (*string, core.Row, error) {
		var req postPatch
		if err := action.Bind(in, &req); err != nil {
			return nil, nil, err
		}
		cols := core.Row{}
		if req.Body != nil {
			cols["body"] = *req.Body
		}
		return req.Title, cols, nil
	},
}

type advertInput struct {
	Title      string `json:"title" validate:"required,max=200"`
	Body       string `json:"body" validate:"max=20000"`
	Category   string `json:"category" validate:"max=64"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Currency   string `json:"currency" validate:"omitempty,iso4217"`
}

type advertPatch struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=200"`
	Body       *string `json:"body" validate:"omitempty,max=20000"`
	Category   *string `json:"category" validate:"omitempty,max=64"`
	PriceCents *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	Currency   *string `json:"currency" validate:"omitempty,iso4217"`
}

const defaultCurrency = "EUR"

var adverts = contentKind{
	Name:  "advert",
	Table: "adverts",
	Create: func(in action.Input) (string, core.Row, error) {
		var req advertInput
		if err := action.Bind(in, &req); err != nil {
			return "", nil, err
		}
		currency := strings.ToUpper(req.Currency)
		if currency == "" {
			currency = defaultCurrency
		}
		return req.Title, core.Row{
			"body":        req.Body,
			"category":    strings.ToLower(req.Category),
			"price_cents": req.PriceCents,
			"currency":    currency,
		}, nil
	},
	Update: func(in action.Input) (*string, core.Row, error) {
		var req advertPatch
		if err := action.Bind(in, &req); err != nil {
			return nil, nil, err
		}
		cols := core.Row{}
		if req.Body != nil {
			cols["body"] = *req.Body
		}
		if req.Category != nil {
			cols["category"] = strings.ToLower(*req.Category)
		}
		if req.PriceCents != nil {
			cols["price_cents"] = *req.PriceCents
		}
		if req.Currency != nil {
			cols["currency"] = strings.ToUpper(*req.Currency)
		}
		return req.Title, cols, nil
	},
	Filter: func(_ action.RequestContext, in action.Input, where query.Where) query.Where {
		if c, ok := in["category"].(string); ok && c != "" {
			where = where.And(query.Eq("category", strings.ToLower(c)))
		}
		return where
	},
}

type articleInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Summary   string `json:"summary" validate:"max=500"`
	Body      string `json:"body" validate:"max=100000"`
	Published bool   `json:"published"`
}

type articlePatch struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	Summary   *string `json:"summary" validate:"omitempty,max=500"`
	Body      *string `json:"body" validate:"omitempty,max=100000"`
	Published *bool   `json:"published"`
}

var articles = contentKind{
	Name:  "article",
	Table: "articles",
	Create: func(in action.Input) (string, core.Row, error) {
		var req articleInput
		if err := action.Bind(in, &req); err != nil {
			return "", nil, err
		}
		return req.Title, core.Row{
			"summary":   req.Summary,
			"body":      req.Body,
			"published": req.Published,
		}, nil
	},
	Update: func(in action.Input) (*string, core.Row, error) {
		var req articlePatch
		if err := action.Bind(in, &req); err != nil {
			return nil, nil, err
		}
		cols := core.Row{}
		if req.Summary != nil {
			cols["summary"] = *req.Summary
		}
		if req.Body != nil {
			cols["body"] = *req.Body
		}
		if req.Published != nil {
			cols["published"] = *req.Published
		}
		return req.Title, cols, nil
	},
	// Drafts are listed only to their author.
	Filter: func(rc action.RequestContext, in action.Input, where query.Where) query.Where {
		if by, _ := in["created_by"].(string); by != "" && by == rc.CallerID() {
			return where
		}
		return where.And(query.Eq("published", true))
	},
	Visible: func(rc action.RequestContext, row core.Row) bool {
		return published(row["published"]) || row.String("created_by") == rc.CallerID()
	},
}

// published reads a boolean column; sqlite returns integers.
func published(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	default:
		return false
	}
}
