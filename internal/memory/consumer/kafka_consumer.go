package consumer

import (
	"context"
	"encoding/json"

	"MeetMind/internal/database/kafka"
	"MeetMind/internal/memory/service"
	"MeetMind/internal/models"
	"MeetMind/pkg/logger"
)

// KafkaConsumer consumes transcript jobs from Kafka and runs them
// through the MemoryService ingestion pipeline.
type KafkaConsumer struct {
	kafkaClient   *kafka.KafkaClient
	memoryService *service.MemoryService
	logger        *logger.Logger
}

// NewKafkaConsumer creates a new KafkaConsumer.
func NewKafkaConsumer(kafkaClient *kafka.KafkaClient, memoryService *service.MemoryService, logger *logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		kafkaClient:   kafkaClient,
		memoryService: memoryService,
		logger:        logger,
	}
}

// Start starts the consumer loop. It returns once the loop goroutine is
// running; the loop exits when ctx is cancelled.
func (c *KafkaConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.kafkaClient.Reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to fetch message")
				continue
			}

			var job models.TranscriptJob
			if err := json.Unmarshal(msg.Value, &job); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to unmarshal transcript job")
				// Poison message: commit so it is not redelivered forever.
				c.kafkaClient.Reader.CommitMessages(ctx, msg)
				continue
			}

			if _, err := c.memoryService.IngestTranscript(ctx, job.Meeting, job.Transcript); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).
					WithPayload(map[string]interface{}{"meeting_id": job.Meeting.MeetingID}).
					Error("failed to ingest transcript")
				continue
			}

			if err := c.kafkaClient.Reader.CommitMessages(ctx, msg); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to commit message")
			}
		}
	}()
}
