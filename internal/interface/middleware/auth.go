package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymbro/gymbro-api/pkg/response"
	"github.com/gymbro/gymbro-api/pkg/token"
)

const CtxUserIDKey = "userID"

// Auth reads the access_token cookie, verifies it as an access token, and
// injects the user id into the Gin context.
func Auth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie("access_token")
		if err != nil || tok == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		uid, err := tokens.Verify(token.PurposeAccess, tok)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}
