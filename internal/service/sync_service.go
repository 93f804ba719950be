// internal/service/sync_service.go
package service

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spaceshq/spaces-backend/internal/clients"
	appErrors "github.com/spaceshq/spaces-backend/internal/errors"
	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/queue"
	"github.com/spaceshq/spaces-backend/internal/repository"
)

const (
	// Fixed-interval polling of the scraper control plane, no backoff.
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 60
)

// ActorRunner is the slice of the scraper control plane the service needs.
type ActorRunner interface {
	StartRun(actorID string, input any) (*clients.ActorRun, error)
	GetRun(runID string) (*clients.ActorRun, error)
	FetchDatasetItems(datasetID string) ([]map[string]any, error)
}

type SyncService struct {
	SyncJobRepo      repository.SyncJobRepositoryInterface
	OpportunityRepo  repository.OpportunityRepositoryInterface
	OrganisationRepo repository.OrganisationRepositoryInterface
	SnippetRepo      repository.SnippetRepositoryInterface
	BuyICT           *BuyICTService
	Runner           ActorRunner
	Queue            queue.Queue // optional; hands runs to the worker for polling
	PollInterval     time.Duration
	MaxPolls         int
}

func actorForKind(kind string) string {
	switch kind {
	case model.SyncKindBuyICT:
		return os.Getenv("APIFY_BUYICT_ACTOR")
	case model.SyncKindDirectory:
		return os.Getenv("APIFY_DIRECTORY_ACTOR")
	case model.SyncKindWebsite:
		return os.Getenv("APIFY_CRAWLER_ACTOR")
	}
	return ""
}

// StartRun creates a sync-job row and kicks off the actor. The job row is what
// the browser polls; completion normally arrives through the webhook, with
// AwaitRun as the worker-side fallback.
func (s *SyncService) StartRun(spaceID int, kind string, input any) (*model.SyncJob, error) {
	actorID := actorForKind(kind)
	if actorID == "" {
		return nil, fmt.Errorf("no actor configured for sync kind %q", kind)
	}

	job := &model.SyncJob{SpaceID: spaceID, Kind: kind, Status: model.SyncStatusQueued}
	if err := s.SyncJobRepo.Create(job); err != nil {
		return nil, err
	}

	run, err := s.Runner.StartRun(actorID, input)
	if err != nil {
		s.SyncJobRepo.MarkFailed(job.ID, err.Error())
		return nil, err
	}

	if err := s.SyncJobRepo.UpdateRun(job.ID, run.ID, model.SyncStatusRunning); err != nil {
		return nil, err
	}
	job.RunID = run.ID
	job.Status = model.SyncStatusRunning

	// Hand the run to the worker, which polls until the actor finishes. The
	// webhook still completes the job first when it arrives.
	if s.Queue != nil {
		if err := s.Queue.Publish(queue.TopicDirectorySyncs, queue.SyncRunJob{SyncJobID: job.ID}); err != nil {
			slog.Warn("[SyncService] Failed to queue run polling",
				slog.Int("sync_job_id", job.ID), slog.Any("error", err))
		}
	}
	return job, nil
}

// StartWebsiteCrawl starts the crawler actor against the space's website.
func (s *SyncService) StartWebsiteCrawl(spaceID int, websiteURL string) (*model.SyncJob, error) {
	if websiteURL == "" {
		return nil, fmt.Errorf("website URL is required")
	}
	input := map[string]any{"startUrls": []map[string]string{{"url": websiteURL}}}
	return s.StartRun(spaceID, model.SyncKindWebsite, input)
}

// AwaitRun polls the run on a fixed interval until it finishes or the attempt
// cap is hit, then ingests the dataset. Used by the worker binary.
func (s *SyncService) AwaitRun(jobID int) error {
	job, err := s.SyncJobRepo.GetByID(jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("sync job %d not found", jobID)
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxPolls := s.MaxPolls
	if maxPolls <= 0 {
		maxPolls = defaultMaxPolls
	}

	for attempt := 0; attempt < maxPolls; attempt++ {
		run, err := s.Runner.GetRun(job.RunID)
		if err != nil {
			slog.Warn("[SyncService] Run status check failed",
				slog.String("run_id", job.RunID), slog.Any("error", err))
			time.Sleep(interval)
			continue
		}

		switch run.Status {
		case "SUCCEEDED":
			items, err := s.Runner.FetchDatasetItems(run.DefaultDatasetID)
			if err != nil {
				s.SyncJobRepo.MarkFailed(job.ID, err.Error())
				return err
			}
			return s.ingest(job, items)
		case "FAILED", "ABORTED", "TIMED-OUT":
			s.SyncJobRepo.MarkFailed(job.ID, "actor run ended with status "+run.Status)
			return fmt.Errorf("actor run %s ended with status %s", job.RunID, run.Status)
		}

		time.Sleep(interval)
	}

	s.SyncJobRepo.MarkFailed(job.ID, "gave up waiting for actor run")
	return fmt.Errorf("actor run %s did not finish within %d polls", job.RunID, maxPolls)
}

// HandleWebhook ingests the dataset items delivered by the scraper's
// completion webhook.
func (s *SyncService) HandleWebhook(runID string, items []map[string]any) error {
	job, err := s.SyncJobRepo.GetByRunID(runID)
	if err != nil {
		return err
	}
	if job == nil {
		return appErrors.NewSyncRunNotFound(runID)
	}
	return s.ingest(job, items)
}

func (s *SyncService) ingest(job *model.SyncJob, items []map[string]any) error {
	imported := 0

	switch job.Kind {
	case model.SyncKindBuyICT:
		for _, item := range items {
			if s.ingestOpportunity(job.SpaceID, item) {
				imported++
			}
		}
	case model.SyncKindDirectory:
		for _, item := range items {
			if s.ingestOrganisation(job.SpaceID, item) {
				imported++
			}
		}
	case model.SyncKindWebsite:
		snippets := []model.ContentSnippet{}
		for _, item := range items {
			text := stringField(item, "text")
			if text == "" {
				continue
			}
			snippets = append(snippets, model.ContentSnippet{
				Title:   stringField(item, "url"),
				Content: capText(text, contextSourceCap),
			})
			imported++
		}
		if err := s.SnippetRepo.ReplaceForSource(job.SpaceID, model.SnippetSourceWebsite, snippets); err != nil {
			s.SyncJobRepo.MarkFailed(job.ID, err.Error())
			return err
		}
	default:
		err := fmt.Errorf("unknown sync kind %q", job.Kind)
		s.SyncJobRepo.MarkFailed(job.ID, err.Error())
		return err
	}

	return s.SyncJobRepo.MarkCompleted(job.ID, len(items), imported)
}

func (s *SyncService) ingestOpportunity(spaceID int, item map[string]any) bool {
	externalID := stringField(item, "id")
	title := stringField(item, "title")
	if externalID == "" || title == "" {
		return false
	}

	buyer := stringField(item, "buyerEntity")
	department, err := s.BuyICT.ResolveDepartment(spaceID, buyer)
	if err != nil {
		slog.Warn("[SyncService] Department resolution failed", slog.Any("error", err))
	}

	o := &model.Opportunity{
		SpaceID:     spaceID,
		ExternalID:  externalID,
		Title:       title,
		BuyerEntity: buyer,
		Department:  department,
		Category:    stringField(item, "category"),
		ValueBand:   stringField(item, "estimatedValue"),
		Source:      model.OpportunitySourceScraper,
		URL:         stringField(item, "url"),
	}
	if _, err := s.OpportunityRepo.UpsertByExternalID(o); err != nil {
		slog.Warn("[SyncService] Opportunity upsert failed",
			slog.String("external_id", externalID), slog.Any("error", err))
		return false
	}
	return true
}

func (s *SyncService) ingestOrganisation(spaceID int, item map[string]any) bool {
	name := stringField(item, "name")
	if name == "" {
		return false
	}

	o := &model.Organisation{
		SpaceID:   spaceID,
		Name:      name,
		Acronym:   stringField(item, "acronym"),
		Portfolio: stringField(item, "portfolio"),
		Website:   stringField(item, "website"),
	}
	if err := s.OrganisationRepo.UpsertByName(o); err != nil {
		slog.Warn("[SyncService] Organisation upsert failed",
			slog.String("name", name), slog.Any("error", err))
		return false
	}

	for _, raw := range listField(item, "contacts") {
		contact, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c := &model.Contact{
			OrganisationID: o.ID,
			Name:           stringField(contact, "name"),
			Role:           stringField(contact, "role"),
			Email:          stringField(contact, "email"),
			Phone:          stringField(contact, "phone"),
		}
		if c.Name == "" {
			continue
		}
		if err := s.OrganisationRepo.CreateContact(c); err != nil {
			slog.Warn("[SyncService] Contact insert failed", slog.Any("error", err))
		}
	}
	return true
}

func stringField(item map[string]any, key string) string {
	v, _ := item[key].(string)
	return v
}

func listField(item map[string]any, key string) []any {
	v, _ := item[key].([]any)
	return v
}
