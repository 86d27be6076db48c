package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/djlord-it/checkerhub/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires the handler behind CORS, request IDs, access logging and metrics.
func NewRouter(h *Handler, origins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(requestID(), accessLog(h.log, h.metrics))

	engine.GET("/health", h.health)
	engine.GET("/databases", h.listDatabases)
	engine.POST("/tables", h.listTables)
	engine.POST("/columns", h.listColumns)
	engine.POST("/send_checker", h.sendChecker)
	engine.POST("/schedule/preview", h.previewSchedule)

	engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found")
	})

	return engine
}

// requestID reuses an incoming X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log logrus.FieldLogger, sink metrics.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		sink.RequestCompleted(route, status, elapsed)

		log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDHeader),
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"duration":   elapsed.String(),
		}).Info("api: request")
	}
}
