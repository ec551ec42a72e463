package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/guardit/pkg/api/handlers"
	"github.com/urmzd/guardit/pkg/app"
)

// Router holds the Gin engine and the service graph it serves
type Router struct {
	engine   *gin.Engine
	services *app.Services
}

// NewRouter creates the API router over services
func NewRouter(services *app.Services) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:   engine,
		services: services,
	}

	router.setupRoutes()

	return router
}

func (r *Router) setupRoutes() {
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.services)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		deviceHandler := handlers.NewDeviceHandler(r.services)
		dev := v1.Group("/device")
		{
			dev.GET("", deviceHandler.GetDevice)
			dev.POST("/connect", deviceHandler.Connect)
			dev.POST("/disconnect", deviceHandler.Disconnect)
			dev.POST("/buzzer", deviceHandler.ActivateBuzzer)
			dev.GET("/buzzer/status", deviceHandler.BuzzerStatus)
			dev.POST("/detection/enable", deviceHandler.EnableDetection)
			dev.POST("/detection/disable", deviceHandler.DisableDetection)
			dev.GET("/detection/status", deviceHandler.DetectionStatus)
		}

		telemetryHandler := handlers.NewTelemetryHandler(r.services)
		tel := v1.Group("/telemetry")
		{
			tel.POST("/start", telemetryHandler.Start)
			tel.POST("/stop", telemetryHandler.Stop)
			tel.GET("/latest", telemetryHandler.Latest)
		}

		cameraHandler := handlers.NewCameraHandler(r.services)
		cam := v1.Group("/camera")
		{
			cam.GET("/status", cameraHandler.Status)
			cam.GET("/capture/:source", cameraHandler.Capture)
			cam.POST("/stream/start", cameraHandler.StartStream)
			cam.POST("/stream/stop", cameraHandler.StopStream)
			cam.GET("/stream/frame", cameraHandler.Frame)
			cam.GET("/stream/ws", cameraHandler.StreamSocket)
			cam.POST("/motion/check", cameraHandler.CheckMotion)
		}

		alertsHandler := handlers.NewAlertsHandler(r.services)
		alerts := v1.Group("/alerts")
		{
			alerts.GET("", alertsHandler.List)
			alerts.DELETE("", alertsHandler.Clear)
			alerts.GET("/unread", alertsHandler.Unread)
			alerts.GET("/events", alertsHandler.Events)
			alerts.POST("/read-all", alertsHandler.MarkAllRead)
			alerts.POST("/test", alertsHandler.Test)
			alerts.POST("/:id/read", alertsHandler.MarkRead)
			alerts.DELETE("/:id", alertsHandler.Delete)
		}
	}
}

// Handler returns the router as an http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
