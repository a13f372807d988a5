package api

import "github.com/lyricsplit/lyricsplit-server/internal/service"

// Services groups the services the handlers call.
type Services struct {
	Song         *service.SongService
	Distribution *service.DistributionService
	Formation    *service.FormationService
	Search       *service.SearchService
}
