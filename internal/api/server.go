// Package api assembles the HTTP service from configuration.
package api

import (
	"context"
	"errors"
	"fmt"

	"carematch/internal/app/config"
	"carematch/internal/app/events"
	"carematch/internal/app/handler"
	"carematch/internal/app/identity"
	"carematch/internal/app/lifecycle"
	"carematch/internal/app/middleware"
	"carematch/internal/app/redis"
	"carematch/internal/app/repository"
	"carematch/internal/app/role"
	"carematch/internal/app/storage"
	"carematch/internal/app/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceVersion = "0.1.0"

// Server owns every long-lived dependency behind the router.
type Server struct {
	Config     *config.Config
	Repository *repository.Repository
	Engine     *lifecycle.Engine
	Router     *gin.Engine

	redis     *redis.Client
	publisher events.Publisher
}

// NewServer connects the store and the optional side services and builds the
// router. Close releases whatever was opened, even after a partial failure.
func NewServer(ctx context.Context, cfg *config.Config) (s *Server, err error) {
	s = &Server{Config: cfg, publisher: events.Noop{}}
	defer func() {
		if err != nil {
			s.Close(context.Background())
			s = nil
		}
	}()

	if err = telemetry.Init(ctx, telemetry.Options{
		Enabled:        cfg.Telemetry.Enabled,
		Stdout:         cfg.Telemetry.Stdout,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		return s, fmt.Errorf("telemetry: %w", err)
	}

	s.Repository, err = repository.Open(cfg.Database.Driver, cfg.Database.ConnString())
	if err != nil {
		return s, err
	}

	if cfg.Redis.Enabled() {
		s.redis, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			return s, err
		}
		logrus.Info("redis connected")
	}

	resolver, jwtResolver, err := s.newResolver(ctx)
	if err != nil {
		return s, err
	}

	s.publisher, err = s.newPublisher()
	if err != nil {
		return s, err
	}

	opts := []lifecycle.Option{
		lifecycle.WithPublisher(s.publisher),
		lifecycle.WithStrictOrderConsistency(cfg.Lifecycle.StrictOrderConsistency),
		lifecycle.WithLocation(cfg.Lifecycle.Location()),
	}
	if cfg.MinIO.Enabled() {
		avatars, err := s.newAvatarStore(ctx)
		if err != nil {
			return s, err
		}
		opts = append(opts, lifecycle.WithAvatarSigner(avatars))
	}
	s.Engine = lifecycle.New(s.Repository, opts...)

	var (
		revoker  handler.TokenRevoker
		lifetime handler.TokenLifetime
	)
	if jwtResolver != nil && s.redis != nil {
		revoker, lifetime = s.redis, jwtResolver
	}
	authHandler := handler.NewAuthHandler(s.Repository, revoker, lifetime)
	apiHandler := handler.NewAPIHandler(s.Engine, authHandler)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	s.Router = gin.Default()
	s.Router.Use(middleware.RequestID())
	apiHandler.RegisterAPIRoutes(s.Router, middleware.NewAuthMiddleware(resolver))

	return s, nil
}

// newResolver picks the identity source for the configured auth mode. The JWT
// resolver is also returned on its own so logout can read token lifetimes.
func (s *Server) newResolver(ctx context.Context) (identity.Resolver, *identity.JWTResolver, error) {
	auth := s.Config.Auth
	switch auth.Mode {
	case config.AuthJWT:
		var revoked identity.Revocations
		if s.redis != nil {
			revoked = s.redis
		} else {
			logrus.Warn("redis is not configured, logged out tokens stay valid until expiry")
		}
		r := identity.NewJWTResolver(auth.JWT.Token, auth.JWT.SigningMethod, revoked)
		return r, r, nil
	case config.AuthOIDC:
		r, err := identity.NewOIDCResolver(ctx, auth.OIDC.Issuer, auth.OIDC.ClientID, auth.OIDC.RoleClaim)
		if err != nil {
			return nil, nil, fmt.Errorf("oidc: %w", err)
		}
		return r, nil, nil
	case config.AuthDev:
		devRole, err := role.Parse(auth.Dev.Role)
		if err != nil {
			return nil, nil, fmt.Errorf("auth.dev.role: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"subject": auth.Dev.Subject,
			"role":    devRole.String(),
		}).Warn("dev identity mode, every caller is trusted")
		return identity.NewDevResolver(auth.Dev.Subject, devRole, auth.Dev.AllowOverride), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown auth mode %q", auth.Mode)
}

func (s *Server) newPublisher() (events.Publisher, error) {
	ev := s.Config.Events
	switch ev.Sink {
	case config.SinkKafka:
		logrus.WithField("topic", ev.Topic).Info("publishing lifecycle events to kafka")
		return events.NewKafkaPublisher(ev.Brokers, ev.Topic), nil
	case config.SinkRedis:
		if s.redis == nil {
			return nil, errors.New("events.sink = redis needs a redis connection")
		}
		logrus.WithField("stream", ev.Stream).Info("publishing lifecycle events to redis stream")
		return events.NewStreamPublisher(s.redis.Raw(), ev.Stream, ev.StreamMaxLen), nil
	}
	return events.Noop{}, nil
}

func (s *Server) newAvatarStore(ctx context.Context) (*storage.MinIOClient, error) {
	m := s.Config.MinIO
	client, err := storage.NewMinIOClient(storage.Options{
		Endpoint:  m.Endpoint,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Bucket:    m.Bucket,
		Region:    m.Region,
		UseSSL:    m.UseSSL,
		URLTTL:    m.URLTTL,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		logrus.WithError(err).Warn("avatar bucket check failed")
	}
	return client, nil
}

// Close shuts down the publisher, Redis, the database and telemetry.
func (s *Server) Close(ctx context.Context) {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			logrus.WithError(err).Warn("close event publisher")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logrus.WithError(err).Warn("close redis")
		}
	}
	if s.Repository != nil {
		if err := s.Repository.Close(); err != nil {
			logrus.WithError(err).Warn("close database")
		}
	}
	telemetry.Shutdown(ctx)
}
