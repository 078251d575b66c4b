package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	icache "VoltMetrics/internal/service/cache"
	"VoltMetrics/internal/usecase"
	pkgch "VoltMetrics/pkg/clickhouse"
	"VoltMetrics/pkg/config"
	xhttp "VoltMetrics/pkg/http"
	pkgkafka "VoltMetrics/pkg/kafka"
	applogger "VoltMetrics/pkg/logger"
)

// App owns every long-lived component and drives startup and shutdown.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.EventCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	resCache    *icache.ResultCache
	EventProc   *usecase.EventProcessor
}

// New wires the core components into a runnable application.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	collector *usecase.EventCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler injects the route handler after construction.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetResultCache hands the engine result cache over for lifecycle management.
func (a *App) SetResultCache(rc *icache.ResultCache) { a.resCache = rc }

// Run brings everything up and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("channels", a.cfg.Gateway.Channels))

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	l.Info("stop signal received")
	return a.shutdown(context.Background())
}

// shutdown stops intake first so in-flight events drain before the
// storage clients go away.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.resCache != nil {
		a.resCache.Stop()
	}
	if a.EventProc != nil {
		a.EventProc.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("all components stopped")
	return nil
}
