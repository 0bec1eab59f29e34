package handler

import (
	"fmt"
	"net/http"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// searchTotal is the fixed hit count reported by the stub search.
const searchTotal = 42

// GetUser processes GET /users/:user_id with a stub record.
func GetUser(c *gin.Context) {
	var uri domain.UserURI
	if err := bindURI(c, &uri); err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.User{
		UserID: uri.UserID,
		Name:   fmt.Sprintf("User %d", uri.UserID),
		Email:  fmt.Sprintf("user%d@baro.ai", uri.UserID),
		Role:   "lawyer",
	})
}

// Search processes GET /search with a stub paginated result set.
func Search(c *gin.Context) {
	var q domain.SearchQuery
	if err := bindQuery(c, &q); err != nil {
		abortWith(c, err)
		return
	}

	results := make([]domain.SearchResult, 0, 3)
	for i := 1; i <= 3; i++ {
		results = append(results, domain.SearchResult{
			ID:    i,
			Title: fmt.Sprintf("Result %d matching '%s'", i, q.Q),
			Type:  "case",
		})
	}

	c.JSON(http.StatusOK, domain.SearchResponse{
		Query:        q.Q,
		Page:         q.Page,
		Limit:        q.Limit,
		TotalResults: searchTotal,
		Results:      results,
	})
}

type errorDemoQuery struct {
	ShouldFail bool `form:"should_fail,default=false"`
}

// ErrorDemo processes GET /error-demo. should_fail=true raises a domain error.
func ErrorDemo(c *gin.Context) {
	var q errorDemoQuery
	if err := bindQuery(c, &q); err != nil {
		abortWith(c, err)
		return
	}
	if q.ShouldFail {
		abortWith(c, domain.Generic("you set should_fail = true, so here's an error!"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "No error occurred"})
}
