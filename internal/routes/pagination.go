package routes

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DEFAULT_PAGE = 1
	MAX_LIMIT    = 100
)

type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// parsePagination reads page/limit query params, clamping to sane bounds.
// Malformed values fall back to the defaults.
func parsePagination(c *gin.Context, defaultLimit int) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DEFAULT_PAGE)))
	if err != nil || page < 1 {
		page = DEFAULT_PAGE
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MAX_LIMIT {
		limit = MAX_LIMIT
	}

	return page, limit
}

func pageMeta(page, limit, total int) PageMeta {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return PageMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
