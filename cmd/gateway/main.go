package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/coursehub/coursehub-gateway/internal/api"
	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/credentials"
	"github.com/coursehub/coursehub-gateway/internal/gateway"
	"github.com/coursehub/coursehub-gateway/internal/keepalive"
	"github.com/coursehub/coursehub-gateway/internal/proxy"
)

const shutdownTimeout time.Duration = 10 * time.Second

func fatal(message string, err error) {
	slog.Error(message, "error", err)
	os.Exit(1)
}

func main() {
	slog.SetDefault(jsonLogger)
	ch := config.NewConfigHandler()
	gwConfig, err := ch.Config()
	if err != nil {
		fatal("the configuration could not be loaded", err)
	}
	slog.Info("configuration loaded", "config", gwConfig)
	setDebugMode(gwConfig.DebugMode)
	// everything except the debug mode needs a restart to change
	ch.HandleChanges(func(newConfig config.Config, err error) {
		if err != nil {
			slog.Error("the changed configuration is invalid, keeping the previous one", "error", err)
			return
		}
		setDebugMode(newConfig.DebugMode)
	})
	ch.Watch()

	if gwConfig.Monitoring.Sentry.Enabled {
		initSentry(gwConfig.Monitoring.Sentry)
		defer sentry.Flush(2 * time.Second)
	}

	gw, client, err := newGateway(gwConfig)
	if err != nil {
		fatal("the gateway could not be initialized", err)
	}

	e := newServer(gwConfig)
	proxyServer, err := proxy.NewProxy(
		proxy.WithGateway(gw),
		proxy.WithAPIClient(client),
		proxy.WithEndpoints(gwConfig.Backend.Endpoints),
		proxy.WithLoginPageURL(gwConfig.Backend.LoginPageURL),
	)
	if err != nil {
		fatal("the proxy could not be initialized", err)
	}
	proxyServer.RegisterHandlers(e, commonMiddlewares...)

	if gwConfig.Monitoring.Prometheus.Enabled {
		go serveMetrics(gwConfig.Monitoring.Prometheus.Port)
	}
	if gwConfig.Keepalive.Enabled {
		stop, err := startKeepalive(gwConfig.Keepalive, gw)
		if err != nil {
			fatal("the keepalive could not be started", err)
		}
		defer stop()
	}

	address := fmt.Sprintf("%s:%d", gwConfig.Server.Host, gwConfig.Server.Port)
	go func() {
		slog.Info("listening", "address", address, "backend", gwConfig.Backend.BaseURL.String())
		err := e.Start(address)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("the server stopped unexpectedly", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	received := <-signals
	slog.Info("shutting down", "signal", received.String())
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("in-flight requests did not finish before the shutdown timeout", "error", err)
	}
}

func setDebugMode(enabled bool) {
	if enabled {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(slog.LevelInfo)
}

func initSentry(sentryConfig config.SentryConfig) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              string(sentryConfig.Dsn),
		Environment:      sentryConfig.Environment,
		TracesSampleRate: sentryConfig.SampleRate,
		EnableTracing:    sentryConfig.SampleRate > 0,
	})
	if err != nil {
		slog.Error("sentry could not be initialized, errors will only be logged", "error", err)
	}
}

// newGateway wires the credential store, the gateway and the typed backend client together and
// picks up a session left behind by a previous run
func newGateway(gwConfig config.Config) (*gateway.Gateway, *api.Client, error) {
	store, err := credentials.NewStore(gwConfig.Credentials, gwConfig.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("credential store: %w", err)
	}
	gw, err := gateway.NewGateway(
		gateway.WithConfig(gwConfig.Backend),
		gateway.WithCredentialStore(store),
		gateway.WithMetrics(gateway.NewMetrics(prometheus.DefaultRegisterer)),
		gateway.WithSessionLostHandler(sessionLost),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := gw.Restore(context.Background()); err != nil {
		slog.Error("GATEWAY", "message", "the stored credential could not be restored, starting signed out", "error", err)
	}
	client, err := api.NewClient(
		api.WithGateway(gw),
		api.WithBaseURL(gwConfig.Backend.BaseURL),
		api.WithEndpoints(gwConfig.Backend.Endpoints),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("api client: %w", err)
	}
	return gw, client, nil
}

func newServer(gwConfig config.Config) *echo.Echo {
	e := echo.New()
	// the startup is logged through slog instead
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.RequestID(), middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	limits := gwConfig.Server.RateLimits
	if limits.Enabled {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limits.Rate),
			Burst:     limits.Burst,
			ExpiresIn: 3 * time.Minute,
		})
		e.Use(middleware.RateLimiter(store))
	}
	if len(gwConfig.Server.AllowOrigin) > 0 {
		// browsers only send the gateway cookie along when credentials are allowed
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     gwConfig.Server.AllowOrigin,
			AllowCredentials: true,
		}))
	}
	if gwConfig.Monitoring.Sentry.Enabled {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	if gwConfig.Monitoring.Prometheus.Enabled {
		e.Use(echoprometheus.NewMiddleware("coursehub_gateway"))
	}
	return e
}

// serveMetrics exposes the prometheus registry on its own port so it is never proxied
func serveMetrics(port int) {
	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandler())
	err := metrics.Start(fmt.Sprintf(":%d", port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("the metrics server stopped unexpectedly", err)
	}
}

func startKeepalive(keepaliveConfig config.KeepaliveConfig, gw *gateway.Gateway) (func(), error) {
	k, err := keepalive.NewKeepalive(keepalive.WithConfig(keepaliveConfig), keepalive.WithGateway(gw))
	if err != nil {
		return nil, err
	}
	scheduler, err := k.GetScheduler()
	if err != nil {
		return nil, err
	}
	scheduler.StartAsync()
	return scheduler.Stop, nil
}

// sessionLost reports sessions that could not be recovered, the proxy tells the callers to sign in again
func sessionLost(ctx context.Context, cause error) {
	slog.Warn("GATEWAY", "message", "the session was lost, a new sign in is required", "error", cause)
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureMessage("session lost: " + cause.Error())
}
