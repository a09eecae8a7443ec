package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
)

// CollectorConfig sizes the collector's buffer and batches.
type CollectorConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// Collector buffers events and publishes them to Kafka in batches, flushing
// when a batch fills or the flush interval elapses. Events arriving while
// the buffer is full are dropped.
type Collector struct {
	publisher kafka.Publisher
	cfg       CollectorConfig
	eventCh   chan ComparisonEvent
	dropped   atomic.Int64
	published atomic.Int64
	closeOnce sync.Once
	done      chan struct{}
	logger    *slog.Logger
}

// NewCollector creates a Collector. Start must be called before events are
// published.
func NewCollector(publisher kafka.Publisher, cfg CollectorConfig) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Collector{
		publisher: publisher,
		cfg:       cfg,
		eventCh:   make(chan ComparisonEvent, cfg.BufferSize),
		done:      make(chan struct{}),
		logger:    logger.WithComponent("analytics-collector"),
	}
}

// Start launches the publish loop. It returns immediately. Once ctx is done
// the loop exits and later events are never published, so ctx must outlive
// every caller of Track. Close alone is enough to stop the loop.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", c.cfg.BufferSize,
		"batch_size", c.cfg.BatchSize,
		"flush_interval", c.cfg.FlushInterval,
	)
}

// Track enqueues an event, dropping it if the buffer is full.
func (c *Collector) Track(event ComparisonEvent) {
	select {
	case c.eventCh <- event:
	default:
		if c.dropped.Add(1)%1000 == 1 {
			c.logger.Warn("analytics events dropped (buffer full)", "total_dropped", c.dropped.Load())
		}
	}
}

// Close stops accepting events, flushes what is buffered and waits for the
// publish loop to exit. Track must not be called after Close.
func (c *Collector) Close() {
	c.closeOnce.Do(func() { close(c.eventCh) })
	<-c.done
}

// Dropped returns how many events were discarded because the buffer was full.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Published returns how many events reached Kafka.
func (c *Collector) Published() int64 {
	return c.published.Load()
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.cfg.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := c.publisher.PublishBatch(ctx, batch); err != nil {
			c.logger.Error("analytics batch publish failed", "events", len(batch), "error", err)
		} else {
			c.published.Add(int64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.finalFlush(flush)
				return
			}
			batch = append(batch, kafka.Event{Key: event.Strategy + "/" + event.Metric, Value: event})
			if len(batch) >= c.cfg.BatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			c.drain(&batch)
			c.finalFlush(flush)
			return
		}
	}
}

func (c *Collector) drain(batch *[]kafka.Event) {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			*batch = append(*batch, kafka.Event{Key: event.Strategy + "/" + event.Metric, Value: event})
		default:
			return
		}
	}
}

func (c *Collector) finalFlush(flush func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	flush(ctx)
}
