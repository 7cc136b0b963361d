package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageTemplate is the template name the display page renders.
const PageTemplate = "display.html"

// Page serves the full-screen player. It needs the engine's HTML templates to
// contain PageTemplate.
func Page(title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, PageTemplate, gin.H{
			"Title":      title,
			"SocketPath": "/api/display/ws",
			"ActivePath": "/api/display/active",
		})
	}
}
