package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindful-chat/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	cookie SessionCookie,
	chatH *ChatHandler,
	communityH *CommunityHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, JSON content-type y sesión.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware(), SessionMiddleware(logger, sessions, cookie))

	r.GET("/chat-history", chatH.GetHistory)
	r.POST("/chat", chatH.PostChat)
	r.POST("/clear-chat", chatH.ClearChat)

	community := r.Group("/community", RequireUser())
	community.GET("", communityH.ListPosts)
	community.POST("", communityH.CreatePost)
	community.GET("/:id", communityH.GetPost)
	community.POST("/:id/answers", communityH.CreateAnswer)
	community.POST("/answers/:id/solution", communityH.MarkSolution)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
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

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
