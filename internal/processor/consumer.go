package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"talentscope/internal/config"
	"talentscope/internal/logger"
	"talentscope/internal/storage"
)

// Consumer owns the ingest queue consumers.
type Consumer struct {
	pipeline *Pipeline
	store    *storage.Storage
	cfg      *config.RabbitMQConfig
	stops    []chan<- struct{}
}

// NewConsumer declares the messaging topology and returns a consumer
// ready to start.
func NewConsumer(cfg *config.Config, store *storage.Storage, pipeline *Pipeline) (*Consumer, error) {
	if store.RabbitMQ == nil {
		return nil, fmt.Errorf("rabbitmq storage not available")
	}

	mq := cfg.RabbitMQ
	if err := store.RabbitMQ.EnsureExchange(mq.ResumeEventsExchange, "direct", true); err != nil {
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}
	if err := store.RabbitMQ.EnsureQueue(mq.ResumeIngestQueue, true); err != nil {
		return nil, fmt.Errorf("declaring queue: %w", err)
	}
	if err := store.RabbitMQ.BindQueue(mq.ResumeIngestQueue, mq.ResumeEventsExchange, mq.ResumeUploadedKey); err != nil {
		return nil, fmt.Errorf("binding queue: %w", err)
	}

	return &Consumer{
		pipeline: pipeline,
		store:    store,
		cfg:      &mq,
	}, nil
}

// Start launches the configured number of workers. Each worker holds
// its own channel so a slow PDF does not block the others.
func (c *Consumer) Start(ctx context.Context) error {
	workers := c.cfg.IngestConsumerWorkers
	if workers <= 0 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		stop, err := c.store.RabbitMQ.StartConsumer(c.cfg.ResumeIngestQueue, c.cfg.PrefetchCount, func(body []byte) bool {
			return c.handle(ctx, body)
		})
		if err != nil {
			c.Stop()
			return fmt.Errorf("starting consumer %d: %w", i, err)
		}
		c.stops = append(c.stops, stop)
	}

	logger.Info().
		Int("workers", workers).
		Str("queue", c.cfg.ResumeIngestQueue).
		Msg("resume ingest consumers started")
	return nil
}

// Stop signals every worker to quit.
func (c *Consumer) Stop() {
	for _, stop := range c.stops {
		close(stop)
	}
	c.stops = nil
}

// handle decodes and processes one delivery. The return value is the
// ack decision: true acknowledges, false requeues.
func (c *Consumer) handle(ctx context.Context, body []byte) bool {
	var msg storage.ResumeUploadedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// Undecodable payloads would requeue forever.
		logger.Error().Err(err).Msg("dropping malformed resume message")
		return true
	}

	if err := c.pipeline.Process(ctx, msg); err != nil {
		logger.Error().
			Err(err).
			Str("candidate_id", msg.CandidateID).
			Msg("resume processing failed, message will be redelivered")
		return false
	}
	return true
}
