package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"psyscreen/internal/service"
)

const channelNameKey = "channel_name"

// ChannelAuthMiddleware verifies the delivering channel's bearer token and
// stores the channel name in the request context. With no secret configured
// the middleware is a pass-through, matching local development wiring.
func ChannelAuthMiddleware(tokens *service.ChannelTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || !tokens.Enabled() {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeError(c, http.StatusUnauthorized, "unauthorized", "missing channel token")
			c.Abort()
			return
		}

		channel, err := tokens.Verify(header[len("Bearer "):])
		if err != nil {
			writeError(c, http.StatusUnauthorized, "unauthorized", "invalid channel token")
			c.Abort()
			return
		}

		c.Set(channelNameKey, channel)
		c.Next()
	}
}

// ChannelName returns the verified channel name from the request context.
func ChannelName(c *gin.Context) (string, bool) {
	val, ok := c.Get(channelNameKey)
	if !ok {
		return "", false
	}
	name, ok := val.(string)
	return name, ok
}
