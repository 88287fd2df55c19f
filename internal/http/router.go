package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"psyscreen/internal/service"
)

// NewRouter configures the gin router with middlewares and routes.
func NewRouter(
	logger *zap.Logger,
	tokens *service.ChannelTokenService,
	assessmentH *AssessmentHandler,
	instrumentH *InstrumentHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	instruments := r.Group("/instruments")
	instruments.GET("", instrumentH.ListInstruments)
	instruments.GET("/:id", instrumentH.GetInstrument)

	channel := r.Group("/", ChannelAuthMiddleware(tokens))
	channel.POST("/assessments", assessmentH.StartAssessment)
	channel.GET("/assessments/:id/question", assessmentH.CurrentQuestion)
	channel.POST("/assessments/:id/answers", assessmentH.SubmitAnswer)
	channel.GET("/users/:id/profile", assessmentH.GetProfile)
	channel.GET("/users/:id/results", assessmentH.ListResults)

	return r
}

// zapLoggerMiddleware is a simple request logging middleware backed by zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware forces Content-Type: application/json on responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
