package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
)

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError maps a use case error onto a status code
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case model.IsValidationError(err):
		c.JSON(http.StatusNotAcceptable, gin.H{"error": "Tasks overlap"})
	case model.IsStructuralError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request %s failed: %v", c.GetString(requestIDKey), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

// pathID parses the :id parameter; it writes 400 and returns false when invalid
func pathID(c *gin.Context) (model.TaskID, bool) {
	id, err := model.ParseTaskID(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid ID format")
		return 0, false
	}
	return id, true
}
