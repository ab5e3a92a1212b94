package server

import (
	"github.com/gin-gonic/gin"
	"github.com/whizlyai/whizly/internal/orgcontext"
)

// OrgRequired resolves the tenant from the X-Org-Id header.
func (s *Server) OrgRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgcontext.ParseOrgID(c.GetHeader(orgcontext.HeaderOrgID))
		if !ok {
			AbortWithError(c, ErrOrgRequired)
			return
		}

		c.Request = c.Request.WithContext(orgcontext.WithOrgID(c.Request.Context(), orgID))
		c.Next()
	}
}
