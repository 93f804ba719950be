// cmd/worker/main.go
package main

import (
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/spaceshq/spaces-backend/internal/clients"
	"github.com/spaceshq/spaces-backend/internal/db"
	"github.com/spaceshq/spaces-backend/internal/logging"
	"github.com/spaceshq/spaces-backend/internal/queue"
	"github.com/spaceshq/spaces-backend/internal/repository"
	"github.com/spaceshq/spaces-backend/internal/service"
)

const maxDeliveryRetries = 3

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	logging.InitLogger()
	db.Init()

	// Repositories
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	postRepo := &repository.PostRepository{DB: db.DB}
	brandRepo := &repository.BrandRepository{DB: db.DB}
	snippetRepo := &repository.SnippetRepository{DB: db.DB}
	opportunityRepo := &repository.OpportunityRepository{DB: db.DB}
	organisationRepo := &repository.OrganisationRepository{DB: db.DB}
	mappingRepo := &repository.DepartmentMappingRepository{DB: db.DB}
	syncJobRepo := &repository.SyncJobRepository{DB: db.DB}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		PostRepo:     postRepo,
		BrandRepo:    brandRepo,
		SnippetRepo:  snippetRepo,
		Completer:    clients.GetOpenAIClient(),
	}
	buyICTService := &service.BuyICTService{
		OpportunityRepo:  opportunityRepo,
		OrganisationRepo: organisationRepo,
		MappingRepo:      mappingRepo,
	}
	syncService := &service.SyncService{
		SyncJobRepo:      syncJobRepo,
		OpportunityRepo:  opportunityRepo,
		OrganisationRepo: organisationRepo,
		SnippetRepo:      snippetRepo,
		BuyICT:           buyICTService,
		Runner:           clients.GetApifyClient(),
	}

	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}
	q, err := queue.NewAMQPQueue(amqpURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer q.Close()

	generations, err := q.Consume(queue.TopicCampaignGenerations)
	if err != nil {
		log.Fatal("Failed to register generation consumer:", err)
	}
	syncs, err := q.Consume(queue.TopicDirectorySyncs)
	if err != nil {
		log.Fatal("Failed to register sync consumer:", err)
	}

	go consume(q, queue.TopicCampaignGenerations, generations, func(body []byte) error {
		var job queue.GenerationJob
		if err := json.Unmarshal(body, &job); err != nil {
			return err
		}
		generated, failed, err := campaignService.GeneratePosts(job.CampaignID)
		if err != nil {
			return err
		}
		slog.Info("[Worker] Campaign generation finished",
			slog.Int("campaign_id", job.CampaignID),
			slog.Int("generated", generated),
			slog.Int("failed", failed))
		return nil
	})
	go consume(q, queue.TopicDirectorySyncs, syncs, func(body []byte) error {
		var job queue.SyncRunJob
		if err := json.Unmarshal(body, &job); err != nil {
			return err
		}
		return syncService.AwaitRun(job.SyncJobID)
	})

	log.Println("Worker running, waiting for messages...")
	forever := make(chan bool)
	<-forever
}

// consume drains one delivery stream with manual acks. Failed jobs are
// republished with an incremented x-retry-count up to maxDeliveryRetries,
// then dropped. Nack-with-requeue would redeliver the original publication
// forever, since headers never change on requeue.
func consume(q *queue.AMQPQueue, topic string, msgs <-chan amqp.Delivery, handle func(body []byte) error) {
	for d := range msgs {
		if err := handle(d.Body); err != nil {
			retries := queue.DeliveryRetries(d)
			log.Println("Job failed:", err)
			if retries < maxDeliveryRetries {
				if err := q.Republish(topic, d.Body, retries+1); err != nil {
					slog.Warn("[Worker] Republish failed, requeueing as-is",
						slog.String("topic", topic), slog.Any("error", err))
					d.Nack(false, true)
					continue
				}
			} else {
				slog.Error("[Worker] Dropping job after repeated failures",
					slog.String("topic", topic), slog.Int("retries", retries))
			}
		}
		d.Ack(false)
	}
}
