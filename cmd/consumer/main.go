package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/masonvale/notifyhub/internal/config"
	"github.com/masonvale/notifyhub/internal/db"
	"github.com/masonvale/notifyhub/internal/dispatch"
	"github.com/masonvale/notifyhub/internal/event"
	"github.com/masonvale/notifyhub/internal/health"
	"github.com/masonvale/notifyhub/internal/ledger"
	"github.com/masonvale/notifyhub/internal/logging"
	"github.com/masonvale/notifyhub/internal/metrics"
	"github.com/masonvale/notifyhub/internal/notify"
	"github.com/masonvale/notifyhub/internal/registry"
	"github.com/masonvale/notifyhub/internal/tracing"
)

// store is what the consumer needs from a ledger backend.
type store interface {
	ledger.Store
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.FromEnv()
	ctx := context.Background()

	logger := logging.New("notifyhub-consumer")

	shutdown, err := tracing.InitTracing(ctx, "notifyhub-consumer")
	if err != nil {
		logger.Plain().WithError(err).Fatal("Failed to initialize tracing")
	}
	defer shutdown()

	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Plain().WithError(err).Fatal("ledger init failed")
	}
	defer cleanup()
	logger.Plain().WithField("backend", cfg.Store.Backend).Info("ledger ready")

	reg := registry.New()
	for eventType, handler := range notify.BuiltinHandlers() {
		if err := reg.Register(eventType, handler); err != nil {
			// Duplicate registration is a startup configuration error.
			logger.Plain().WithEventType(eventType).WithError(err).Fatal("handler registration failed")
		}
	}

	channel, err := buildChannel(cfg, logger)
	if err != nil {
		logger.Plain().WithError(err).Fatal("sink init failed")
	}

	dispatcher := dispatch.New(st, reg, channel, logger)

	// Prom metrics
	promReg := prometheus.NewRegistry()
	metrics.MustRegister(promReg)

	// HTTP health/metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.HTTPHandler(st))
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	httpSrv := &http.Server{Addr: cfg.HTTPPort, Handler: mux}
	go func() {
		logger.Plain().WithField("addr", httpSrv.Addr).Info("consumer HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Plain().WithError(err).Fatal("consumer HTTP server failed")
		}
	}()

	// One subscription per registered event type, all sharing one channel so
	// horizontally scaled instances split the work.
	var consumers []*nsq.Consumer
	for _, topic := range reg.Types() {
		consumer, err := newTopicConsumer(ctx, cfg, topic, dispatcher, logger)
		if err != nil {
			logger.Plain().WithTopic(topic).WithError(err).Fatal("nsq consumer setup failed")
		}
		consumers = append(consumers, consumer)
	}

	startDepthMonitor(cfg, reg.Types(), logger)

	logger.Plain().WithField("topics", strings.Join(reg.Types(), ",")).Info("consumer service started")

	// Graceful stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Plain().Info("Shutting down consumer service")
	for _, c := range consumers {
		c.Stop()
	}
	for _, c := range consumers {
		<-c.StopChan
	}
	_ = httpSrv.Shutdown(context.Background())
	logger.Plain().Info("consumer service stopped")
}

// buildStore selects the ledger backend from config.
func buildStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		return ledger.NewPostgresStore(pool, cfg.Store.Timeout), pool.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		s := ledger.NewRedisStore(client, cfg.Store.Retention, cfg.Store.Timeout)
		return s, func() { _ = client.Close() }, nil
	case "memory":
		// Single-process dev mode only: no durability, no cross-instance dedup.
		return ledger.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildChannel(cfg config.Config, logger *logging.Logger) (notify.Channel, error) {
	switch cfg.Sink.Kind {
	case "log":
		return notify.NewLogChannel(logger), nil
	case "http":
		if cfg.Sink.URL == "" {
			return nil, fmt.Errorf("http sink requires SINK_URL")
		}
		return notify.NewHTTPChannel(cfg.Sink.URL, cfg.Sink.Secret, cfg.Sink.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown sink kind %q", cfg.Sink.Kind)
	}
}

func newTopicConsumer(ctx context.Context, cfg config.Config, topic string, dispatcher *dispatch.Dispatcher, logger *logging.Logger) (*nsq.Consumer, error) {
	conf := nsq.NewConfig()
	conf.MaxInFlight = cfg.NSQ.MaxInFlight
	consumer, err := nsq.NewConsumer(topic, cfg.NSQ.Channel, conf)
	if err != nil {
		return nil, err
	}

	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse() // we manually requeue or finish
		defer func() {
			if !m.HasResponded() {
				logger.Plain().WithTopic(topic).Warn("message had no response, finishing")
				m.Finish()
			}
		}()

		env, err := event.Decode(m.Body)
		if err != nil {
			// Terminal: a body that does not decode cannot be retried productively.
			logger.Plain().WithTopic(topic).WithError(err).Error("bad event body")
			metrics.RecordHandlerFailure(topic, "bad_envelope")
			m.Finish()
			return nil
		}

		msgCtx := tracing.ExtractTraceFromNSQ(ctx, env.TraceHeaders)
		_, err = dispatcher.Dispatch(msgCtx, env)
		if dispatch.ShouldAck(err) {
			m.Finish()
			return nil
		}

		// Store unavailable: hand the message back to the bus. The bus's
		// redelivery delay is the retry policy, not an in-process loop.
		m.Requeue(-1)
		return nil
	}))

	// Connecting directly to NSQD forces channel creation, instead of the channel being lazily created on first publish
	if err := consumer.ConnectToNSQD(cfg.NSQ.NsqdTCPAddr); err != nil {
		return nil, fmt.Errorf("connect to nsqd: %w", err)
	}
	if err := consumer.ConnectToNSQLookupd(cfg.NSQ.LookupHTTPAddr); err != nil {
		return nil, fmt.Errorf("connect to lookupd: %w", err)
	}
	return consumer, nil
}

// startDepthMonitor polls nsqd stats and exports per-topic backlog gauges.
func startDepthMonitor(cfg config.Config, topics []string, logger *logging.Logger) {
	watched := make(map[string]bool, len(topics))
	for _, t := range topics {
		watched[t] = true
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		httpClient := &http.Client{Timeout: 5 * time.Second}

		for range ticker.C {
			// nsqd serves stats on its HTTP port (TCP port + 1)
			nsqdHTTPAddr := strings.Replace(cfg.NSQ.NsqdTCPAddr, ":4150", ":4151", 1)
			resp, err := httpClient.Get(fmt.Sprintf("http://%s/stats?format=json", nsqdHTTPAddr))
			if err != nil {
				logger.Plain().WithError(err).Error("Failed to get NSQ stats")
				continue
			}

			var stats struct {
				Topics []struct {
					Name     string `json:"topic_name"`
					Channels []struct {
						Name  string `json:"channel_name"`
						Depth int64  `json:"depth"`
					} `json:"channels"`
				} `json:"topics"`
			}

			if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
				resp.Body.Close()
				logger.Plain().WithError(err).Error("Failed to decode NSQ stats")
				continue
			}
			resp.Body.Close()

			for _, topic := range stats.Topics {
				if !watched[topic.Name] {
					continue
				}
				for _, channel := range topic.Channels {
					metrics.UpdateTopicDepth(topic.Name, channel.Name, float64(channel.Depth))
				}
			}
		}
	}()
}
