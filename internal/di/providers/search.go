package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/config"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
	"github.com/lyricsplit/lyricsplit-server/internal/search"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SongIndex

	// Rebuilt is set when the index was recreated empty at startup.
	Rebuilt bool
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve song index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, rebuilt, err := search.NewSongIndex(search.Options{
		DataPath: cfg.Storage.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "rebuilt", rebuilt)

	return &SearchIndexHandle{SongIndex: index, Rebuilt: rebuilt}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.SongIndex, storeHandle.Store, log.Logger)

	// Wire to store for automatic indexing
	storeHandle.SetSearchIndexer(indexHandle.SongIndex)

	return svc, nil
}

// TriggerSearchReindexIfNeeded repopulates an empty or rebuilt index from the
// stored songs in the background. Call it after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	storeHandle := do.MustInvoke[*StoreHandle](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 && !indexHandle.Rebuilt {
		return
	}

	// Check if we have songs that need indexing
	page, err := storeHandle.ListSongs(context.Background(), store.PaginationParams{Limit: 1})
	if err != nil || len(page.Items) == 0 {
		return
	}

	log.Info("Search index is empty but songs exist, triggering initial reindex")

	go func() {
		count, err := searchService.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "songs", count)
	}()
}
