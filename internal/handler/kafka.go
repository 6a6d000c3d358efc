package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"pedidos-api/internal/config"
	"pedidos-api/internal/entities"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	ordersIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pedidos_api",
		Subsystem: "kafka_consumer",
		Name:      "orders_ingested_total",
		Help:      "Total number of orders created from the topic.",
	})

	ordersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pedidos_api",
		Subsystem: "kafka_consumer",
		Name:      "orders_rejected_total",
		Help:      "Total number of order messages sent to the DLQ.",
	})
)

type OrderCreator interface {
	Create(ctx context.Context, payload []byte) (entities.Order, error)
}

// kafkaHandler ingests raw order submissions from a topic through the same
// normalize-and-create path the HTTP surface uses. Messages that fail for a
// business reason go to the dead-letter topic; infrastructure failures are
// left uncommitted so the broker redelivers them.
type kafkaHandler struct {
	dlq     *kafka.Writer
	reader  *kafka.Reader
	logger  *slog.Logger
	creator OrderCreator
}

func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, creator OrderCreator) *kafkaHandler {
	return &kafkaHandler{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		creator: creator,
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			}
			h.logger.Error("failed to fetch message", slog.Any("error", err))
			continue
		}

		if _, err := h.creator.Create(ctx, m.Value); err != nil {
			// at-least-once delivery: a redelivered message hits the
			// uniqueness constraint, which just means it was already ingested
			if errors.Is(err, entities.ErrOrderAlreadyExists) {
				h.logger.Debug("order already ingested, skipping")
				if err := h.reader.CommitMessages(ctx, m); err != nil {
					h.logger.Error("failed to commit message", slog.Any("error", err))
				}
				continue
			}

			var domainErr *entities.Error
			if !errors.As(err, &domainErr) {
				// storage or broker trouble: skip the commit, the message
				// comes back on the next fetch
				h.logger.Error("failed to ingest order", slog.Any("error", err))
				continue
			}

			h.logger.Warn("order message rejected",
				slog.String("code", string(domainErr.Code)),
				slog.String("reason", domainErr.Message),
			)
			if err := h.writeToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
			ordersRejected.Inc()
		} else {
			ordersIngested.Inc()
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *kafkaHandler) writeToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
