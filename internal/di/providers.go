package di

import (
	"context"
	"fmt"
	"time"

	"VoltMetrics/internal/domain/repository"
	"VoltMetrics/internal/handler/api"
	mid "VoltMetrics/internal/middleware"
	internalrepo "VoltMetrics/internal/repository"
	icache "VoltMetrics/internal/service/cache"
	"VoltMetrics/internal/service/gateway"
	"VoltMetrics/internal/services/telemetry"
	"VoltMetrics/internal/usecase"
	pkgcache "VoltMetrics/pkg/cache"
	pkgch "VoltMetrics/pkg/clickhouse"
	"VoltMetrics/pkg/config"
	pkgkafka "VoltMetrics/pkg/kafka"
	applogger "VoltMetrics/pkg/logger"
	"VoltMetrics/pkg/metrics"
	"VoltMetrics/pkg/queue"
	"VoltMetrics/pkg/server"

	goredis "github.com/redis/go-redis/v9"
	segkafka "github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// saleTable resolves the raw sales table, qualified with the database.
func saleTable(cfg *config.Config) string {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "sales_raw"
	}
	return cfg.ClickHouse.Database + "." + table
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		`CREATE TABLE IF NOT EXISTS ` + saleTable(cfg) + ` (
            ts DateTime,
            event_id String,
            order_id String,
            sku String,
            category LowCardinality(String),
            channel LowCardinality(String),
            warehouse LowCardinality(String),
            quantity Float64,
            unit_price Float64,
            revenue Float64,
            cost Float64,
            discount Float64,
            pick_seconds Float64,
            filled Float64,
            returned Float64,
            satisfaction Float64,
            org_id String
        ) ENGINE=ReplacingMergeTree ORDER BY (warehouse, ts, event_id)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSaleStorage creates ClickHouse storage repository.
func ProvideSaleStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), saleTable(cfg))
}

// ProvideSalePublisher creates Kafka publisher repository.
func ProvideSalePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, lgr *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerLogger(lgr),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.HookFuncs{
		Err: func(_ context.Context, topic string, _ segkafka.Message, _ []byte, _ error) {
			m.RecordError("kafka_consume_" + topic)
		},
	})
	return consumer, nil
}

// ProvideKafkaSalesHandler registers handler for the sales topic.
func ProvideKafkaSalesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaSalesHandler {
	return usecase.NewKafkaSalesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideGatewayStream creates the storefront gateway WebSocket stream.
func ProvideGatewayStream(cfg *config.Config) repository.EventStream {
	return gateway.New(
		cfg.Gateway.APIKey,
		cfg.Gateway.WebSocketURL,
		cfg.Gateway.Channels,
		cfg.Gateway.ReconnectDelay,
		cfg.Gateway.PingInterval,
	)
}

// ProvideEventProcessor creates the event processor use case.
func ProvideEventProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.EventProcessor {
	return usecase.NewEventProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideEventCollector creates the event collector use case.
func ProvideEventCollector(
	stream repository.EventStream,
	processor *usecase.EventProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.EventCollector {
	// Build middleware pipeline between the gateway and the backend
	maxRPS := cfg.Gateway.MaxRPS
	if maxRPS <= 0 {
		maxRPS = 50
	}
	bufSize := cfg.Gateway.BufferSize
	if bufSize <= 0 {
		bufSize = 2000
	}
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(maxRPS),
		mid.WithBufferSize(bufSize),
	)
	return usecase.NewEventCollector(stream, processor, metrics, pipe)
}

// ProvideResultCache creates the engine result cache with its sweeper running.
func ProvideResultCache(cfg *config.Config) *icache.ResultCache {
	opts := []icache.Option{}
	if cfg.Analytics.ResultCacheTTL > 0 {
		opts = append(opts, icache.WithTTL(cfg.Analytics.ResultCacheTTL))
	}
	if cfg.Analytics.SweepInterval > 0 {
		opts = append(opts, icache.WithSweepInterval(cfg.Analytics.SweepInterval))
	}
	rc := icache.NewResultCache(opts...)
	rc.Start()
	return rc
}

// ProvideTelemetrySink wires the calculation telemetry path. Queue delivery
// needs Redis; without it (or with telemetry disabled) events go nowhere.
func ProvideTelemetrySink(cfg *config.Config, lgr *applogger.Logger) repository.TelemetrySink {
	tcfg := cfg.Analytics.Telemetry
	if !tcfg.Enabled || tcfg.WebhookURL == "" {
		return telemetry.NoopSink{}
	}
	timeout := tcfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if tcfg.UseQueue && cfg.Analytics.Redis.Enabled {
		cli := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Analytics.Redis.Addr,
			Password: cfg.Analytics.Redis.Password,
			DB:       cfg.Analytics.Redis.DB,
		})
		q := queue.NewRedisQueue(lgr, cli,
			queue.WithWorkers(1),
			queue.WithKeyPrefix("voltmetrics:telemetry"))
		q.RegisterJob(telemetry.NewDispatchJob(tcfg.WebhookURL, timeout))
		q.RegisterJob(telemetry.NewErrorLogJob(tcfg.WebhookURL, timeout))
		if err := q.Start(); err != nil {
			lgr.Error("telemetry queue start failed", applogger.Error(err))
			return telemetry.NewWebhookSink(tcfg.WebhookURL, timeout, lgr)
		}
		// aggregate repeated error logs onto the same queue
		lgr.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "error_logs",
			Publisher:      q,
		})
		return telemetry.NewQueuedSink(q, lgr)
	}
	return telemetry.NewWebhookSink(tcfg.WebhookURL, timeout, lgr)
}

// ProvideRecordStore creates the ClickHouse read store for the engine.
func ProvideRecordStore(chClient *pkgch.Client, cfg *config.Config, lgr *applogger.Logger) repository.RecordStore {
	store := internalrepo.NewCHRecordStore(chClient, saleTable(cfg))
	store.SetLogger(lgr)
	return store
}

// ProvideCalculator creates the metrics engine facade.
func ProvideCalculator(
	rc *icache.ResultCache,
	m repository.Metrics,
	sink repository.TelemetrySink,
	lgr *applogger.Logger,
) *usecase.Calculator {
	return usecase.NewCalculator(rc, m, sink, lgr)
}

// ProvideDashboardService creates the domain dashboard use case.
func ProvideDashboardService(store repository.RecordStore, calc *usecase.Calculator) *usecase.DashboardService {
	return usecase.NewDashboardService(store, calc)
}

// ProvideAnalyticsHandler creates the Echo API handler, with an optional
// Redis response cache.
func ProvideAnalyticsHandler(
	lgr *applogger.Logger,
	store repository.RecordStore,
	calc *usecase.Calculator,
	dash *usecase.DashboardService,
	cfg *config.Config,
) *api.AnalyticsHandler {
	h := api.NewAnalyticsHandler(lgr, store, calc, dash)
	if cfg.Analytics.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisAddr(cfg.Analytics.Redis.Addr),
			pkgcache.WithRedisAuth(cfg.Analytics.Redis.Password, cfg.Analytics.Redis.DB),
			pkgcache.WithRedisPrefix("voltmetrics:api"),
		)
		if err != nil {
			lgr.Warn("response cache disabled, redis unavailable", applogger.Error(err))
		} else {
			layered := pkgcache.NewLayeredCache(rc, pkgcache.WithL1MaxEntries(512))
			h.SetCache(icache.NewResponseCache(layered))
		}
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	collector *usecase.EventCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSalesHandler,
	chClient *pkgch.Client,
	rc *icache.ResultCache,
	handler *api.AnalyticsHandler,
) *server.App {
	app := server.New(cfg, lgr, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	app.SetResultCache(rc)
	if collector != nil {
		app.EventProc = collector.Processor()
	}
	return app
}
