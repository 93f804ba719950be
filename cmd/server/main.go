// cmd/server/main.go
package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/spaceshq/spaces-backend/internal/clients"
	"github.com/spaceshq/spaces-backend/internal/controller"
	"github.com/spaceshq/spaces-backend/internal/db"
	"github.com/spaceshq/spaces-backend/internal/handler"
	"github.com/spaceshq/spaces-backend/internal/logging"
	"github.com/spaceshq/spaces-backend/internal/queue"
	"github.com/spaceshq/spaces-backend/internal/repository"
	"github.com/spaceshq/spaces-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	logging.InitLogger()
	db.Init()

	// Repositories
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	postRepo := &repository.PostRepository{DB: db.DB}
	imageRepo := &repository.PostImageRepository{DB: db.DB}
	brandRepo := &repository.BrandRepository{DB: db.DB}
	snippetRepo := &repository.SnippetRepository{DB: db.DB}
	opportunityRepo := &repository.OpportunityRepository{DB: db.DB}
	organisationRepo := &repository.OrganisationRepository{DB: db.DB}
	mappingRepo := &repository.DepartmentMappingRepository{DB: db.DB}
	integrationRepo := &repository.IntegrationRepository{DB: db.DB}
	syncJobRepo := &repository.SyncJobRepository{DB: db.DB}

	// Clients
	openAI := clients.GetOpenAIClient()
	storage := clients.GetStorageClient()
	apify := clients.GetApifyClient()
	sharePoint := clients.GetSharePointClient()

	// Services
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		PostRepo:     postRepo,
		BrandRepo:    brandRepo,
		SnippetRepo:  snippetRepo,
		Completer:    openAI,
	}
	imageService := &service.ImageService{
		PostRepo:  postRepo,
		ImageRepo: imageRepo,
		BrandRepo: brandRepo,
		Generator: openAI,
		Store:     storage,
		ItemDelay: service.DefaultImageDelay,
	}
	brandService := &service.BrandService{
		BrandRepo:   brandRepo,
		SnippetRepo: snippetRepo,
		Completer:   openAI,
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
		Runner:           apify,
	}
	sharePointService := &service.SharePointService{
		IntegrationRepo: integrationRepo,
		SnippetRepo:     snippetRepo,
		API:             sharePoint,
	}

	// Queue: AMQP when a broker is configured, in-process otherwise.
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		q, err := queue.NewAMQPQueue(amqpURL)
		if err != nil {
			log.Fatalf("failed to connect to AMQP broker: %v", err)
		}
		defer q.Close()
		campaignService.Queue = q
		syncService.Queue = q
		slog.Info("[Server] Background jobs go to AMQP", slog.String("url", amqpURL))
	} else {
		q := queue.NewInMemoryQueue()
		queue.StartGenerationSubscriber(q, campaignService)
		campaignService.Queue = q
		slog.Warn("[Server] AMQP_URL not set, running generation in-process")
	}

	// Controllers
	campaignController := &controller.CampaignController{CampaignService: campaignService}
	postController := &controller.PostController{PostRepo: postRepo, ImageService: imageService}
	brandController := &controller.BrandController{BrandService: brandService}
	buyICTController := &controller.BuyICTController{
		BuyICTService:   buyICTService,
		SyncService:     syncService,
		OpportunityRepo: opportunityRepo,
		SyncJobRepo:     syncJobRepo,
	}
	integrationController := &controller.IntegrationController{
		SharePointService: sharePointService,
		SyncService:       syncService,
	}
	webhookHandler := &handler.WebhookHandler{SyncService: syncService}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)
	r.Put("/campaigns/{id}", campaignController.UpdateCampaign)
	r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)
	r.Post("/campaigns/{id}/generate-ideas", campaignController.GenerateIdeas)
	r.Post("/campaigns/{id}/generate-posts", campaignController.GeneratePosts)
	r.Get("/campaigns/{id}/posts", postController.ListPosts)

	// Post routes
	r.Patch("/posts/{id}/status", postController.UpdatePostStatus)
	r.Delete("/posts/{id}", postController.DeletePost)
	r.Get("/posts/{id}/images", postController.ListImages)
	r.Post("/posts/{id}/images/{imageID}/primary", postController.SetPrimaryImage)
	r.Post("/posts/images/generate", postController.BulkGenerateImages)
	r.Post("/posts/images/apply-logo", postController.BulkApplyLogo)

	// Brand routes
	r.Get("/brand", brandController.GetProfile)
	r.Put("/brand", brandController.UpsertProfile)
	r.Post("/brand/generate", brandController.GenerateProfile)

	// BuyICT routes
	r.Get("/buyict/opportunities", buyICTController.ListOpportunities)
	r.Post("/buyict/opportunities/import", buyICTController.ImportCSV)
	r.Patch("/buyict/opportunities/{id}/status", buyICTController.UpdateOpportunityStatus)
	r.Delete("/buyict/opportunities/{id}", buyICTController.DeleteOpportunity)
	r.Get("/buyict/organisations", buyICTController.ListOrganisations)
	r.Get("/buyict/organisations/{id}/contacts", buyICTController.ListContacts)
	r.Post("/buyict/organisations/{id}/contacts", buyICTController.CreateContact)
	r.Get("/buyict/mappings", buyICTController.ListMappings)
	r.Post("/buyict/mappings", buyICTController.CreateMapping)
	r.Delete("/buyict/mappings/{id}", buyICTController.DeleteMapping)
	r.Post("/buyict/mappings/test", buyICTController.TestMapping)
	r.Post("/buyict/sync", buyICTController.StartSync)
	r.Get("/buyict/sync/{id}", buyICTController.GetSyncJob)

	// Integrations
	r.Get("/integrations/sharepoint/connect", integrationController.Connect)
	r.Get("/integrations/sharepoint/callback", integrationController.Callback)
	r.Get("/integrations/sharepoint/browse", integrationController.Browse)
	r.Post("/integrations/sharepoint/sync", integrationController.Sync)
	r.Post("/crawl", integrationController.Crawl)

	// Webhooks
	r.Post("/webhooks/scraper", webhookHandler.ScraperWebhook)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
