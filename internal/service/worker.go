package service

import (
	"log/slog"
)

// GenerationWorker drains campaign ids from a channel and runs generation for
// each. GenerateFunc is injected so tests can swap the pipeline out.
type GenerationWorker struct {
	JobChan      <-chan int
	GenerateFunc func(campaignID int) (int, int, error)
}

func NewGenerationWorker(jobChan <-chan int, generate func(campaignID int) (int, int, error)) *GenerationWorker {
	return &GenerationWorker{
		JobChan:      jobChan,
		GenerateFunc: generate,
	}
}

// Start begins processing jobs
func (w *GenerationWorker) Start() {
	for campaignID := range w.JobChan {
		generated, failed, err := w.GenerateFunc(campaignID)
		if err != nil {
			slog.Warn("[GenerationWorker] Generation failed",
				slog.Int("campaign_id", campaignID), slog.Any("error", err))
			continue
		}
		slog.Info("[GenerationWorker] Campaign processed",
			slog.Int("campaign_id", campaignID),
			slog.Int("generated", generated),
			slog.Int("failed", failed))
	}
}
