package http

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/config"
)

// Page is the paginated list envelope. Next and Previous are absolute URLs
// or null.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Paginator reads ?page= and ?limit= and builds Page envelopes.
type Paginator struct {
	pageSize    int
	maxPageSize int
}

func NewPaginator(cfg config.Pagination) Paginator {
	p := Paginator{pageSize: cfg.PageSize, maxPageSize: cfg.MaxPageSize}
	if p.pageSize <= 0 {
		p.pageSize = 6
	}
	if p.maxPageSize < p.pageSize {
		p.maxPageSize = p.pageSize
	}
	return p
}

// pageRequest is a parsed page query.
type pageRequest struct {
	Page  int
	Limit int
}

func (r pageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// Parse reads the page query. A malformed page number answers 404, as a
// page that does not exist would.
func (p Paginator) Parse(c *gin.Context) (pageRequest, bool) {
	req := pageRequest{Page: 1, Limit: p.pageSize}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			respondNotFound(c, "page")
			return req, false
		}
		req.Page = page
	}
	if limit := parsePositiveQuery(c, "limit"); limit > 0 {
		req.Limit = min(limit, p.maxPageSize)
	}
	return req, true
}

// InRange reports whether req points at an existing page for total rows,
// answering 404 when it does not. Page 1 always exists.
func (p Paginator) InRange(c *gin.Context, req pageRequest, total int64) bool {
	if req.Page > 1 && int64(req.Offset()) >= total {
		respondNotFound(c, "page")
		return false
	}
	return true
}

// newPage wraps results with absolute next/previous links.
func newPage[T any](c *gin.Context, req pageRequest, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}
	if int64(req.Page*req.Limit) < total {
		page.Next = pageLink(c, req.Page+1)
	}
	if req.Page > 1 {
		page.Previous = pageLink(c, req.Page-1)
	}
	return page
}

// pageLink rebuilds the request URL with another page number. The first
// page is linked without a page parameter.
func pageLink(c *gin.Context, page int) *string {
	u := url.URL{
		Scheme: requestScheme(c),
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()
	link := u.String()
	return &link
}

func requestScheme(c *gin.Context) string {
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		return "https"
	}
	return "http"
}

// absoluteURL turns a server-relative path into an absolute URL for the
// current request. Already absolute values are returned unchanged.
func absoluteURL(c *gin.Context, path string) string {
	if path == "" {
		return ""
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return requestScheme(c) + "://" + c.Request.Host + path
}
