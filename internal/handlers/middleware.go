package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/echo-english/practice-service/internal/config"
)

// AuthMiddleware validates Casdoor-issued bearer tokens and stores the
// learner identity in the request context. When no Casdoor endpoint is
// configured the middleware is a pass-through and requests stay anonymous.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.CasdoorEndpoint == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	casdoorsdk.InitConfig(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
			})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		c.Set("learner_id", claims.User.Id)
		c.Set("learner_name", claims.User.Name)
		c.Next()
	}
}
