package providers

import (
	"github.com/samber/do/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/config"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	emitter := do.MustInvoke[*EmitterHandle](i)

	dbPath := cfg.Storage.DatabasePath()
	db, err := store.New(dbPath, log.Logger, emitter)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
