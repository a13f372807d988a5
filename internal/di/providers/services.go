package providers

import (
	"github.com/samber/do/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/cache"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
)

// ProvideSongService provides the song service.
func ProvideSongService(i do.Injector) (*service.SongService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewSongService(storeHandle.Store, log.Logger), nil
}

// ProvideDistributionService provides the distribution service.
func ProvideDistributionService(i do.Injector) (*service.DistributionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshots := do.MustInvoke[cache.Snapshots](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewDistributionService(storeHandle.Store, snapshots, log.Logger), nil
}

// ProvideFormationService provides the formation service.
func ProvideFormationService(i do.Injector) (*service.FormationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewFormationService(storeHandle.Store, log.Logger), nil
}
