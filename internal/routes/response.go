package routes

import "github.com/gin-gonic/gin"

// apiResponse is the envelope every endpoint returns, success or error.
type apiResponse struct {
	StatusCode int       `json:"statusCode"`
	Data       any       `json:"data"`
	Message    string    `json:"message"`
	Path       string    `json:"path"`
	Meta       *PageMeta `json:"meta"`
}

// Ok writes a 200 response for a single resource.
func Ok(c *gin.Context, data any, message string) {
	c.JSON(200, apiResponse{
		StatusCode: 200,
		Data:       data,
		Message:    message,
		Path:       c.Request.URL.Path,
	})
}

// Created writes a 201 response for a created resource.
func Created(c *gin.Context, data any, message string) {
	c.JSON(201, apiResponse{
		StatusCode: 201,
		Data:       data,
		Message:    message,
		Path:       c.Request.URL.Path,
	})
}

// Paginated writes a 200 response for a collection with page metadata.
func Paginated(c *gin.Context, items any, meta PageMeta, message string) {
	c.JSON(200, apiResponse{
		StatusCode: 200,
		Data:       items,
		Message:    message,
		Path:       c.Request.URL.Path,
		Meta:       &meta,
	})
}
