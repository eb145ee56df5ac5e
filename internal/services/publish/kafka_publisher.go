// Package publish pushes finished campaign series to Kafka so downstream
// consumers (archival jobs, alerting on large timing deviations) do not poll
// the API.
package publish

import (
	"context"
	"fmt"

	"TTVPull/internal/domain/models"
	pkgkafka "TTVPull/pkg/kafka"
	"TTVPull/pkg/logger"
)

// KafkaPublisher implements repository.Publisher on a Kafka topic.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

// seriesMessage is the wire form of a finished campaign. The full result
// stays in storage; the message carries what a consumer needs to decide
// whether to fetch it.
type seriesMessage struct {
	CampaignID string            `json:"campaign_id"`
	Planet     string            `json:"planet"`
	Refit      models.Ephemeris  `json:"refit_ephemeris"`
	Series     *models.TTVSeries `json:"series"`
	Skipped    int               `json:"skipped"`
}

// PublishSeries publishes one finished campaign, keyed by planet so all runs
// for a planet land on one partition in order.
func (p *KafkaPublisher) PublishSeries(ctx context.Context, res *models.CampaignResult) error {
	msg := seriesMessage{
		CampaignID: res.ID,
		Planet:     res.Planet,
		Refit:      res.Refit,
		Series:     res.Series,
		Skipped:    res.Failures.Skipped,
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(res.Planet), msg); err != nil {
		return fmt.Errorf("publish series %s: %w", res.ID, err)
	}
	p.log.Debug("series published",
		logger.String("topic", p.topic),
		logger.String("campaign", res.ID),
		logger.String("planet", res.Planet))
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error { return p.producer.Close() }
