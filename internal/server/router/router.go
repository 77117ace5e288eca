package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/server/handlers"
)

// Handlers groups the HTTP adapters. Webhook is nil when WhatsApp is
// disabled and Metrics is nil when the exporter is off.
type Handlers struct {
	Equipment *handlers.EquipmentHandler
	Commands  *handlers.CommandHandler
	Webhook   *handlers.WebhookHandler
	Metrics   http.Handler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	eq := r.Group("/equipment")
	eq.GET("", h.Equipment.List)
	eq.GET("/:serial", h.Equipment.Get)
	eq.DELETE("/:serial", h.Equipment.Retire)
	eq.POST("/records", h.Equipment.RegisterRecord)
	eq.POST("/vehicles", h.Equipment.RegisterVehicle)
	eq.POST("/tractors", h.Equipment.RegisterTractor)
	eq.POST("/implements", h.Equipment.RegisterImplement)

	r.GET("/reports/fleet", h.Equipment.FleetReport)
	r.POST("/commands", h.Commands.Run)

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/manager/messages", h.Webhook.MessageManager)
	}

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("webhook", h.Webhook != nil), zap.Bool("metrics", h.Metrics != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
