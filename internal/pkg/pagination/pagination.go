package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Params is a 1-based page request.
type Params struct {
	Page    int
	PerPage int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

// Meta describes the page returned to the client.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Page is a slice of items plus the total count before pagination.
type Page[T any] struct {
	Items []T
	Total int64
	Params
}

func (p Page[T]) Meta() Meta {
	last := 1
	if p.PerPage > 0 && p.Total > 0 {
		last = int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       p.Total,
		LastPage:    last,
	}
}

// New normalizes raw values: page < 1 becomes 1, per_page outside 1..MaxPerPage
// becomes DefaultPerPage or MaxPerPage.
func New(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// FromQuery reads ?page= and ?per_page=. Unparseable values use the defaults.
func FromQuery(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return New(page, perPage)
}
