package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 5 * time.Second
	maxPending           = defaultBatchSize * 3
)

// Publisher ships batches of events off-process.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers lookup events on a channel, feeds them to the
// Aggregator and, when a Publisher is set, forwards them in batches.
// Track never blocks; events are dropped when the buffer is full.
type Collector struct {
	aggregator *Aggregator
	publisher  Publisher
	metrics    *metrics.Metrics
	eventCh    chan LookupEvent
	pending    []kafka.Event
	batchSize  int
	interval   time.Duration
	dropped    atomic.Int64
	logger     *slog.Logger
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
}

// NewCollector builds a collector. publisher and m may be nil.
func NewCollector(agg *Aggregator, publisher Publisher, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		aggregator: agg,
		publisher:  publisher,
		metrics:    m,
		eventCh:    make(chan LookupEvent, bufferSize),
		batchSize:  defaultBatchSize,
		interval:   defaultFlushInterval,
		logger:     slog.Default().With("component", "analytics-collector"),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the consume loop. It runs until ctx ends or Close is called.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case event := <-c.eventCh:
				c.handle(ctx, event)
			case <-ticker.C:
				c.flush(ctx)
			case <-ctx.Done():
				c.shutdown()
				return
			case <-c.stop:
				c.shutdown()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"publish", c.publisher != nil,
	)
}

// Track enqueues an event without blocking.
func (c *Collector) Track(event LookupEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
		if c.metrics != nil {
			c.metrics.AnalyticsDropped.Inc()
		}
	}
}

// Dropped returns how many events Track discarded.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close drains buffered events, flushes the last batch and stops the loop.
func (c *Collector) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Collector) handle(ctx context.Context, event LookupEvent) {
	c.aggregator.Record(event)
	if c.publisher == nil {
		return
	}
	c.pending = append(c.pending, kafka.Event{Key: string(event.Endpoint), Value: event})
	if len(c.pending) >= c.batchSize {
		c.flush(ctx)
	}
}

func (c *Collector) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-c.eventCh:
			c.handle(ctx, event)
		default:
			c.flush(ctx)
			if n := c.dropped.Load(); n > 0 {
				c.logger.Warn("analytics events dropped", "count", n)
			}
			return
		}
	}
}

// flush publishes the pending batch. Failed batches stay pending up to
// maxPending events; the oldest are dropped beyond that.
func (c *Collector) flush(ctx context.Context) {
	if c.publisher == nil || len(c.pending) == 0 {
		return
	}
	batch := c.pending
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("batch flush failed", "batch_size", len(batch), "error", err)
		if over := len(batch) - maxPending; over > 0 {
			c.pending = append([]kafka.Event(nil), batch[over:]...)
			c.dropped.Add(int64(over))
			c.logger.Warn("pending batch overflow, events dropped", "dropped", over)
		}
		return
	}
	c.pending = c.pending[:0:0]
	c.logger.Debug("batch flushed", "events", len(batch))
}
