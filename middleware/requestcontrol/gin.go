package requestcontrol

import (
	"github.com/gin-gonic/gin"
)

// GinMiddleware é o equivalente de Middleware para hosts que usam gin.
func GinMiddleware(opts Options) gin.HandlerFunc {
	if !active(opts) {
		return func(c *gin.Context) { c.Next() }
	}
	g := newGate(opts)

	return func(c *gin.Context) {
		if dec := g.check(c.Request); !dec.Allowed {
			c.AbortWithStatusJSON(dec.StatusCode, rejection(dec))
			return
		}
		c.Next()
	}
}
