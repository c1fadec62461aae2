package pkg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"carematch/internal/api"
	"carematch/internal/app/config"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	Config *config.Config
	Server *api.Server
}

func NewApp(c *config.Config, s *api.Server) *Application {
	return &Application{
		Config: c,
		Server: s,
	}
}

// RunApp serves HTTP until ctx is canceled, then drains in-flight requests.
func (a *Application) RunApp(ctx context.Context) error {
	logrus.Info("Server start up")

	serverAddress := fmt.Sprintf("%s:%d", a.Config.ServiceHost, a.Config.ServicePort)
	srv := &http.Server{
		Addr:              serverAddress,
		Handler:           a.Server.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting server on %s", serverAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	logrus.Info("Server down")
	return nil
}
