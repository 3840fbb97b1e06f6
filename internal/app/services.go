package app

import (
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

type Services struct {
	Store      services.CurriculumStore
	Merger     services.SourceMerger
	Generator  services.CurriculumGenerator
	Curriculum services.CurriculumService
	Loader     services.CurriculumLoader
	Search     services.SourceSearchService
	SavedLinks services.SavedLinkService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	store := services.NewCurriculumStore(
		log,
		reposet.Curriculum,
		services.NewCurriculumCache(),
		clients.CurriculumCache,
		clients.Invalidation,
		metrics,
	)

	merger := services.NewSourceMerger(
		log,
		services.NewFeedSourceProvider(clients.Feed),
		services.NewStaticCatalogProvider(),
	)

	var resources services.LearningResourceGenerator
	if cfg.Loader.EnrichLearningResources {
		resources = services.NewLearningResourceGenerator(log, clients.OpenAI)
	}
	generator := services.NewCurriculumGenerator(log, clients.OpenAI, resources, metrics, services.GeneratorConfig{
		EnrichLearningResources: cfg.Loader.EnrichLearningResources,
		CallTimeout:             cfg.Loader.GenerationTimeout,
	})

	return Services{
		Store:      store,
		Merger:     merger,
		Generator:  generator,
		Curriculum: services.NewCurriculumService(log, store, clients.Feed, merger, generator, cfg.Loader.RefreshTimeout),
		Loader:     services.NewCurriculumLoader(log, store, clients.Feed, merger, generator, metrics),
		Search:     services.NewSourceSearchService(log, clients.OpenAI),
		SavedLinks: services.NewSavedLinkService(log, reposet.SavedLinks),
	}
}
