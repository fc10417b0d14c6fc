package v1

import (
	"strconv"

	"applyfollow-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// bindJSON binds the body into req and hands any error to the error
// middleware, which renders validator failures field by field.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}

func currentUserID(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}

// pageParams reads 1-based page and size query values. Missing or
// malformed values come back as zero so the usecase applies its defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return page, size
}
