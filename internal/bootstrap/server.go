package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/hostelmarket/api"
	"github.com/Domenick1991/hostelmarket/config"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerSpec = "hostelmarket.swagger.json"

type Handlers struct {
	Listings     *api.ListingHandler
	Reservations *api.ReservationHandler
	Payments     *api.PaymentHandler
	Admin        *api.AdminHandler
}

func NewHandlers(services *Services) Handlers {
	return Handlers{
		Listings:     api.NewListingHandler(services.Listings),
		Reservations: api.NewReservationHandler(services.Reservations),
		Payments:     api.NewPaymentHandler(services.Reservations),
		Admin:        api.NewAdminHandler(services.Admin),
	}
}

// Run serves HTTP until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, handlers Handlers) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(cfg, handlers),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	handlers.Listings.Register(v1.Group("/listings"))
	handlers.Reservations.Register(v1.Group("/reservations"))
	handlers.Payments.Register(v1.Group("/payments"))
	handlers.Admin.Register(v1.Group("/admin"))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerSpec))))
	}
	return router
}
