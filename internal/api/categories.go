package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/service" // Category catalog

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for creating a category
type CategoryRequest struct {
	Name string `json:"name"`
}

// ListCategoriesHandler returns the whole catalog
func ListCategoriesHandler(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := categories.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateCategoryHandler adds a category
func CreateCategoryHandler(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		category, err := categories.Create(c.Request.Context(), req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}
