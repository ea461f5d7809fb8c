package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Julius14h/FlyNext/api"
	"github.com/Julius14h/FlyNext/config"
	"github.com/Julius14h/FlyNext/internal/repository"
	"github.com/Julius14h/FlyNext/internal/service/booking"
	"github.com/Julius14h/FlyNext/internal/service/flights"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, flightSvc flights.SearchUseCase, notifications repository.NotificationRepository) error {
	router := NewRouter(cfg, bookingSvc, flightSvc, notifications)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter assembles the gin engine: authenticated API routes plus the
// swagger UI when a swagger dir is configured.
func NewRouter(cfg *config.Config, bookingSvc booking.BookingUseCase, flightSvc flights.SearchUseCase, notifications repository.NotificationRepository) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	protected := router.Group("/api", api.AuthMiddleware(cfg.Auth.JWTSecret))
	api.NewBookingHandler(bookingSvc).Register(protected)
	api.NewNotificationHandler(notifications).Register(protected)

	public := router.Group("/api")
	api.NewFlightHandler(flightSvc).Register(public)

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/swagger.json"),
		)))
	}

	return router
}
