package app

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/zkauth/adapters/events"
	"github.com/layer-3/zkauth/adapters/store"
	"github.com/layer-3/zkauth/adapters/tokenizer"
	"github.com/layer-3/zkauth/internal/slogx"
	"github.com/layer-3/zkauth/ports"
	"github.com/layer-3/zkauth/service"
	zkhttp "github.com/layer-3/zkauth/transport/http"
	"github.com/layer-3/zkauth/zkp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the verifier together and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	redis      *redis.Client
	users      ports.UserRegistry
	challenges ports.ChallengeStore
	expiring   ports.ExpiringStore // nil when the store expires entries itself
	publisher  message.Publisher

	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	server *http.Server
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "zkauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	params := zkp.Default()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group parameters: %w", err)
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	if err := app.initEvents(); err != nil {
		_ = app.closeStore()
		return nil, err
	}

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		_ = app.release()
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	app.authService = service.NewAuthService(
		params,
		app.users,
		app.challenges,
		tokenizer.NewJWTTokenizer(signKey, cfg.Issuer),
		events.NewWatermillPublisher(app.publisher, cfg.EventsTopic),
		service.WithChallengeTTL(cfg.ChallengeTTL),
		service.WithSessionTTL(cfg.SessionTTL),
		service.WithAuthIDLength(cfg.AuthIDLength),
		service.WithSessionIDLength(cfg.SessionIDLength),
	)

	if app.expiring != nil {
		app.housekeepingService = service.NewHousekeepingService(app.expiring, app.logger, cfg.HousekeepingInterval)
	}

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           zkhttp.SetupRouter(app.authService, app.logger, BuildVersion),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// Handler exposes the HTTP handler, mostly for tests.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Run serves until ctx is cancelled or the server fails, then shuts down.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.cfg.Addr)
	if err != nil {
		if cerr := app.release(); cerr != nil {
			app.logger.Error("error releasing resources", "error", cerr)
		}
		return fmt.Errorf("failed to listen on %s: %w", app.cfg.Addr, err)
	}
	return app.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (app *Application) Serve(ctx context.Context, ln net.Listener) error {
	app.logger.Info("zkauth starting",
		"addr", ln.Addr().String(),
		"store", app.cfg.StoreDriver,
		"version", BuildVersion,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if app.housekeepingService != nil {
		g.Go(func() error {
			return app.housekeepingService.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return app.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down zkauth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.release(); err != nil {
		app.logger.Error("error releasing resources", "error", err)
		return err
	}

	app.logger.Info("zkauth stopped")
	return nil
}

func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case StoreDriverRedis:
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		app.redis = redis.NewClient(opts)

		st := store.NewRedisStore(app.redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			_ = app.redis.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.users, app.challenges = st, st
	default:
		st := store.NewMemoryStore()
		app.users, app.challenges, app.expiring = st, st, st
	}

	app.logger.Info("store initialized", "driver", app.cfg.StoreDriver)
	return nil
}

func (app *Application) initEvents() error {
	logger := watermill.NewSlogLogger(app.logger.With("component", "events"))

	if app.redis != nil {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: app.redis,
			},
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create redis stream publisher: %w", err)
		}
		app.publisher = publisher
		return nil
	}

	app.publisher = gochannel.NewGoChannel(gochannel.Config{}, logger)
	return nil
}

// release closes the event publisher and the store connection.
func (app *Application) release() error {
	if err := app.publisher.Close(); err != nil {
		app.logger.Error("error closing event publisher", "error", err)
	}
	return app.closeStore()
}

// closeStore closes the redis client. The redis stream publisher shares the
// client and closes it too, so an already closed client is not an error.
func (app *Application) closeStore() error {
	if app.redis == nil {
		return nil
	}
	if err := app.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
