package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/fixture"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/http/api"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/http/swagger"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/mcp"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/mq/worker"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/notify"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository/sqlstore"
	app "github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/app"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/config"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Version is reported by the MCP server. Overridden at link time.
var Version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "service exited with error", logger.Error(err))
		os.Exit(1)
	}
}

// application holds everything run owns and must release.
type application struct {
	store     repository.Store
	publisher publisher
	svc       *app.Service
	mux       *http.ServeMux
}

// publisher is an activity sink that holds a connection.
type publisher interface {
	worker.Publisher
	Close() error
}

// run builds the application, serves until ctx is cancelled and shuts down.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	a, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(log)

	if err := a.svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	// Drain activity after the last request has finished.
	if err := a.svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service stop failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// newApplication wires store, publisher, service and routes. It does not
// start anything.
func newApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &application{store: store}

	if cfg.SeedFile != "" {
		if err := seed(ctx, store, cfg.SeedFile, log); err != nil {
			a.close(log)
			return nil, err
		}
	}

	pub, err := openPublisher(cfg, log)
	if err != nil {
		a.close(log)
		return nil, err
	}
	a.publisher = pub

	a.svc = app.New(store,
		app.WithLogger(log.Named("service")),
		app.WithPublisher(pub),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.ActivityQueueSize),
		app.WithIdempotencyCacheSize(cfg.IdempotencyCacheSize),
		app.WithMatchWeights(cfg.MatchWeights),
		app.WithMaxReasons(cfg.MaxReasons),
		app.WithRecencyWindowDays(cfg.RecencyWindowDays),
		app.WithUpcomingDefaultDays(cfg.UpcomingDefaultDays),
		app.WithMaxMatchLimit(cfg.MaxMatchLimit),
	)
	a.mux = newMux(cfg, a.svc, log)
	return a, nil
}

// newMux registers the business API, API docs and, when enabled, the MCP endpoint.
func newMux(cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc,
		api.WithMaxLimit(cfg.MaxMatchLimit),
		api.WithLogger(log.Named("http")),
	).Register(mux)
	swagger.Register(mux)

	if cfg.MCPEnabled {
		tools := mcp.New(svc,
			mcp.WithImplementation("helm-recruiting", Version),
			mcp.WithLogger(log.Named("mcp")),
		)
		mux.Handle(cfg.MCPPath, tools.Handler())
		log.Info(context.Background(), "mcp endpoint enabled", logger.String("path", cfg.MCPPath))
	}
	return mux
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil
	case config.DriverSQLite, config.DriverPostgres:
		st, err := sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}

func openPublisher(cfg *config.Config, log logger.Logger) (publisher, error) {
	if cfg.NATSURL == "" {
		return notify.NewLogPublisher(log.Named("activity")), nil
	}
	p, err := notify.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func seed(ctx context.Context, store repository.Store, path string, log logger.Logger) error {
	f, err := fixture.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}
	st, err := f.Apply(ctx, store, time.Now())
	if err != nil {
		return fmt.Errorf("apply seed file: %w", err)
	}
	log.Info(ctx, "seeded store",
		logger.String("file", path),
		logger.Int("players", st.Players),
		logger.Int("needs", st.Needs),
		logger.Int("pipeline", st.Pipeline),
		logger.Int("events", st.Events))
	return nil
}

func (a *application) close(log logger.Logger) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Warn(context.Background(), "publisher close failed", logger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn(context.Background(), "store close failed", logger.Error(err))
		}
	}
}

// startSystemMetricsUpdater periodically records memory and goroutine gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, log logger.Logger) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats updates the totals and queue gauges itself.
			if _, err := svc.GetStats(ctx); err != nil {
				log.Debug(ctx, "stats refresh failed", logger.Error(err))
			}
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
