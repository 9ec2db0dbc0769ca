package query

import (
	"math"
	"strconv"
	"strings"
)

// DefaultMaxLimit caps page sizes when no other maximum is configured.
const DefaultMaxLimit = 100

// Page selects a window of rows. A zero Limit means no LIMIT clause.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// One is the page used to fetch a single row.
var One = Page{Limit: 1}

// NormalizePage parses inbound offset and limit values (strings or numbers).
// Negative offsets become 0, limits above maxLimit become maxLimit, negative
// limits become 0 and a missing or non-numeric limit becomes defaultLimit.
func NormalizePage(offset, limit any, defaultLimit, maxLimit int) Page {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}

	page := Page{Offset: 0, Limit: defaultLimit}
	if o, ok := toInt(offset); ok && o > 0 {
		page.Offset = o
	}
	if l, ok := toInt(limit); ok {
		page.Limit = l
	}
	return page.Clamp(maxLimit)
}

// Clamp bounds the page to [0, maxLimit] for the limit and >= 0 for the offset.
func (p Page) Clamp(maxLimit int) Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return clampInt64(n), true
	case uint:
		return clampInt64(int64(min(n, math.MaxInt64))), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if f < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(f), true
}

func clampInt64(n int64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}
