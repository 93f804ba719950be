package queue

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Topic names
const (
	TopicCampaignGenerations = "campaign_generations"
	TopicDirectorySyncs      = "directory_syncs"
)

// GenerationJob is the payload for a queued campaign generation.
type GenerationJob struct {
	CampaignID int `json:"campaign_id"`
}

// SyncRunJob is the payload for a queued directory/crawl run.
type SyncRunJob struct {
	SyncJobID int `json:"sync_job_id"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used in tests and when no
// AMQP broker is configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// jobEnvelope wraps a payload with retry info
type jobEnvelope struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := jobEnvelope{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(topic, handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, job jobEnvelope) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		slog.Warn("[Queue] Job failed",
			slog.String("topic", topic),
			slog.Int("attempt", job.RetryCount),
			slog.Int("max_retries", job.MaxRetries),
			slog.Any("error", err))

		if job.RetryCount > job.MaxRetries {
			slog.Error("[Queue] Job permanently failed",
				slog.String("topic", topic), slog.Any("payload", job.Payload))
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// GenerationRunner is the slice of the campaign service the subscriber needs.
type GenerationRunner interface {
	GeneratePosts(campaignID int) (int, int, error)
}

// StartGenerationSubscriber wires queued generation jobs to the campaign
// service. Used with the in-memory queue when the server runs without a
// separate worker process.
func StartGenerationSubscriber(q Queue, runner GenerationRunner) {
	go func() {
		err := q.Subscribe(TopicCampaignGenerations, func(payload any) error {
			job, ok := payload.(GenerationJob)
			if !ok {
				slog.Warn("[Queue] Invalid payload type, expected GenerationJob")
				return nil // no retry
			}

			slog.Info("[Queue] Processing queued generation", slog.Int("campaign_id", job.CampaignID))

			generated, failed, err := runner.GeneratePosts(job.CampaignID)
			if err != nil {
				slog.Warn("[Queue] Generation failed", slog.Any("error", err))
				return err
			}

			slog.Info("[Queue] Generation finished",
				slog.Int("campaign_id", job.CampaignID),
				slog.Int("generated", generated),
				slog.Int("failed", failed))
			return nil
		})

		if err != nil {
			slog.Warn("[Queue] Failed to start generation subscriber", slog.Any("error", err))
		}
	}()
}
