package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"orderdesk/internal/metrics"
	"orderdesk/internal/models"
	"orderdesk/internal/normalize"
)

// OrderUpserter writes a canonical order
type OrderUpserter interface {
	Upsert(ctx context.Context, order *models.Order) error
}

// IngestService turns webhook deliveries into stored orders. Every failure is
// logged and counted but never reported to the caller, so the channel always
// sees its delivery acknowledged.
type IngestService struct {
	normalizers map[models.Source]normalize.Normalizer
	writer      OrderUpserter
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewIngestService creates an ingest service for the given channel normalizers
func NewIngestService(writer OrderUpserter, m *metrics.Metrics, logger *zap.Logger, normalizers ...normalize.Normalizer) *IngestService {
	byChannel := make(map[models.Source]normalize.Normalizer, len(normalizers))
	for _, n := range normalizers {
		byChannel[n.Source()] = n
	}
	return &IngestService{
		normalizers: byChannel,
		writer:      writer,
		metrics:     m,
		logger:      logger.Named("ingest"),
	}
}

// Ingest processes one webhook body and returns the outcome label
func (s *IngestService) Ingest(ctx context.Context, channel models.Source, body io.Reader) string {
	log := s.logger.With(zap.String("channel", string(channel)))

	outcome := s.ingest(ctx, channel, body, log)
	s.metrics.ObserveWebhook(string(channel), outcome)
	return outcome
}

func (s *IngestService) ingest(ctx context.Context, channel models.Source, body io.Reader, log *zap.Logger) string {
	normalizer, ok := s.normalizers[channel]
	if !ok {
		log.Error("No normalizer registered for channel")
		return metrics.OutcomeInvalidPayload
	}

	payload, err := normalize.Decode(body)
	if err != nil {
		log.Warn("Dropping unparsable webhook", zap.Error(err))
		return metrics.OutcomeInvalidPayload
	}

	order, err := normalizer.Normalize(payload)
	if err != nil {
		if errors.Is(err, normalize.ErrNormalization) {
			log.Warn("Dropping malformed webhook", zap.Error(err))
		} else {
			log.Error("Normalizer failed", zap.Error(err))
		}
		return metrics.OutcomeNormalizationFailed
	}

	log = log.With(zap.String("order_id", order.ID))
	if err := s.writer.Upsert(ctx, order); err != nil {
		log.Error("Failed to store webhook order", zap.Error(err))
		return metrics.OutcomePersistenceFailed
	}

	log.Info("Webhook order stored",
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("rto_risk", string(order.RiskTier)),
	)
	return metrics.OutcomeAccepted
}
