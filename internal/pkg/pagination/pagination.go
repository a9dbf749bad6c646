package pagination

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Params represents pagination parameters normalized from a request
// before the query is forwarded to the exchange backend.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultLimit is the default number of items per page
const DefaultLimit = 20

// MaxLimit is the maximum number of items per page
const MaxLimit = 100

// GetParams extracts pagination parameters from request
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:  page,
		Limit: limit,
	}
}

// Query renders the params as backend query values, carrying an optional
// search term through unchanged.
func (p *Params) Query(search string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if search != "" {
		q.Set("search", search)
	}
	return q
}
