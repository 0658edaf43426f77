package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(testContext("page=2&pageSize=2"), items)
	assert.Equal(t, []int{3, 4}, p.Data)
	assert.EqualValues(t, 5, p.TotalRows)
	assert.Equal(t, 3, p.TotalPages)

	p = Paginate(testContext("page=9"), items)
	assert.Equal(t, []int{}, p.Data)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = Paginate(testContext("pageSize=1000&page=-1"), items)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 1, p.CurrentPage)

	p = Paginate(testContext(""), []string{})
	assert.Equal(t, 0, p.TotalPages)
}

func TestCommentKind(t *testing.T) {
	assert.EqualValues(t, "class", commentKind("classes"))
	assert.EqualValues(t, "class", commentKind("class"))
	assert.EqualValues(t, "student", commentKind("students"))
	assert.EqualValues(t, "teachers", commentKind("teachers"))
}
