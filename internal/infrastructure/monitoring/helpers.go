package monitoring

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no registered route, keeping
// label cardinality bounded
const unmatchedRoute = "unmatched"

// routeLabel returns the route pattern (/domains/:domain/options) rather
// than the raw path
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}
