package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	dbkafka "MeetMind/internal/database/kafka"
	"MeetMind/internal/memory/service"
	"MeetMind/internal/memory/store"
	"MeetMind/internal/models"
	"MeetMind/internal/query"
	"MeetMind/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// HealthChecker probes one backing dependency.
type HealthChecker func(ctx context.Context) error

// Handler bundles the HTTP surface: ingestion, querying and the
// read-side lookups.
type Handler struct {
	memoryService *service.MemoryService
	orchestrator  *query.Orchestrator
	kafkaClient   *dbkafka.KafkaClient
	health        map[string]HealthChecker
	log           *logger.Logger
}

// NewHandler creates the API handler. kafkaClient may be nil, in which
// case ingestion always runs synchronously.
func NewHandler(
	memoryService *service.MemoryService,
	orchestrator *query.Orchestrator,
	kafkaClient *dbkafka.KafkaClient,
	health map[string]HealthChecker,
	log *logger.Logger,
) *Handler {
	return &Handler{
		memoryService: memoryService,
		orchestrator:  orchestrator,
		kafkaClient:   kafkaClient,
		health:        health,
		log:           log,
	}
}

// IngestMeetingRequest is the POST /meetings payload. With async set
// the transcript is enqueued and processed by the consumer.
type IngestMeetingRequest struct {
	Meeting    models.Meeting `json:"meeting" binding:"required"`
	Transcript string         `json:"transcript" binding:"required"`
	Async      bool           `json:"async"`
}

// IngestMeeting accepts one meeting transcript, either processing it
// inline or enqueueing it for the Kafka consumer.
func (h *Handler) IngestMeeting(c *gin.Context) {
	var req IngestMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Meeting.MeetingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meeting.meeting_id is required"})
		return
	}

	if req.Async && h.kafkaClient != nil {
		job := models.TranscriptJob{
			Meeting:    req.Meeting,
			Transcript: req.Transcript,
			TraceID:    c.GetString(TraceIDKey),
		}
		if job.TraceID == "" {
			job.TraceID = uuid.NewString()
		}
		raw, err := json.Marshal(job)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		msg := kafka.Message{
			Topic: h.kafkaClient.Config.Topics[0],
			Key:   []byte(req.Meeting.MeetingID),
			Value: raw,
		}
		if err := h.kafkaClient.Writer.WriteMessages(c.Request.Context(), msg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue transcript: " + err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"meeting_id": req.Meeting.MeetingID, "trace_id": job.TraceID})
		return
	}

	result, err := h.memoryService.IngestTranscript(c.Request.Context(), req.Meeting, req.Transcript)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// QueryRequest is the POST /query payload.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// Query classifies the question, retrieves supporting chunks and
// returns the synthesized answer.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orchestrator.Run(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetChunk returns one stored chunk with its links.
func (h *Handler) GetChunk(c *gin.Context) {
	chunk, err := h.memoryService.GetChunk(c.Request.Context(), c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chunk)
}

// OpenThreads lists the still-unanswered questions of a meeting.
func (h *Handler) OpenThreads(c *gin.Context) {
	threads, err := h.memoryService.OpenThreads(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting_id": c.Param("id"), "open_threads": threads})
}

// Experts returns the per-speaker topic profiles, optionally narrowed
// to speakers with expertise on one topic via ?topic=.
func (h *Handler) Experts(c *gin.Context) {
	profiles, err := h.memoryService.ExpertiseProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if topic := strings.ToLower(c.Query("topic")); topic != "" {
		filtered := make(map[string][]store.TopicCount)
		for speaker, topics := range profiles {
			for _, tc := range topics {
				if strings.ToLower(tc.Topic) == topic {
					filtered[speaker] = append(filtered[speaker], tc)
				}
			}
		}
		profiles = filtered
	}
	c.JSON(http.StatusOK, profiles)
}

// Healthz probes every registered dependency and reports per-component
// status. Any failure turns the overall status to 503.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			components[name] = "ok"
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "components": components})
}
