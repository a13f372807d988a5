// Package di provides dependency injection configuration for the LyricSplit server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/cache"
	"github.com/lyricsplit/lyricsplit-server/internal/config"
	"github.com/lyricsplit/lyricsplit-server/internal/di/providers"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Redis-backed extras (no-ops without Redis)
	do.Provide(injector, providers.ProvideRedis)
	do.Provide(injector, providers.ProvideEmitter)
	do.Provide(injector, providers.ProvideSnapshotCache)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideSongService)
	do.Provide(injector, providers.ProvideDistributionService)
	do.Provide(injector, providers.ProvideFormationService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.RedisHandle](injector)
	_ = do.MustInvoke[*providers.EmitterHandle](injector)
	_ = do.MustInvoke[cache.Snapshots](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Business services
	_ = do.MustInvoke[*service.SongService](injector)
	_ = do.MustInvoke[*service.DistributionService](injector)
	_ = do.MustInvoke[*service.FormationService](injector)

	// Server
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Populate the search index if it is empty
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
