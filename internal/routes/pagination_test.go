package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paginationContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/clientes?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 20},
		{"page=3&limit=50", 3, 50},
		{"page=0&limit=0", 1, 20},
		{"page=-2", 1, 20},
		{"limit=9999", 1, 100},
		{"page=abc&limit=xyz", 1, 20},
	}

	for _, c := range cases {
		page, limit := parsePagination(paginationContext(c.query), 20)
		if page != c.wantPage || limit != c.wantLimit {
			t.Errorf("parsePagination(%q) = (%d, %d), want (%d, %d)",
				c.query, page, limit, c.wantPage, c.wantLimit)
		}
	}
}

func TestPageMeta(t *testing.T) {
	meta := pageMeta(2, 10, 25)
	if meta.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", meta.TotalPages)
	}

	meta = pageMeta(1, 10, 30)
	if meta.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", meta.TotalPages)
	}

	meta = pageMeta(1, 10, 0)
	if meta.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", meta.TotalPages)
	}
}
