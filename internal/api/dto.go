package api

import (
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// SongResponse is the API view of a song: the content tree as nested maps.
type SongResponse struct {
	ID         string                                `json:"id" doc:"Song ID"`
	Title      string                                `json:"title" doc:"Song title"`
	Artist     string                                `json:"artist,omitempty" doc:"Performing artist"`
	VideoID    string                                `json:"videoId,omitempty" doc:"Video handed to the player"`
	GroupID    string                                `json:"groupId,omitempty" doc:"Group the song belongs to"`
	SectionIDs []domain.SectionID                    `json:"sectionIds" doc:"Sections in performance order"`
	Sections   map[domain.SectionID]*domain.Section `json:"sections" doc:"Sections by ID"`
	Lines      map[domain.LineID]*domain.Line       `json:"lines" doc:"Lines by ID"`
	Parts      map[domain.PartID]*domain.Part       `json:"parts" doc:"Parts by ID"`
	StartAt    int64                                 `json:"startAt" doc:"Start of the performable range (ms)"`
	EndAt      int64                                 `json:"endAt" doc:"End of the performable range (ms)"`
	CreatedAt  time.Time                             `json:"createdAt" doc:"Creation time"`
	UpdatedAt  time.Time                             `json:"updatedAt" doc:"Last update time"`
}

func toSongResponse(s *domain.Song) SongResponse {
	return SongResponse{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		VideoID:    s.VideoID,
		GroupID:    s.GroupID,
		SectionIDs: s.SectionIDs,
		Sections:   s.Content.Sections,
		Lines:      s.Content.Lines,
		Parts:      s.Content.Parts,
		StartAt:    s.StartAt,
		EndAt:      s.EndAt,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SongListItem is a song row in listings.
type SongListItem struct {
	ID        string             `json:"id" doc:"Song ID"`
	Title     string             `json:"title" doc:"Song title"`
	Artist    string             `json:"artist,omitempty" doc:"Performing artist"`
	GroupID   string             `json:"groupId,omitempty" doc:"Group the song belongs to"`
	Summary   domain.SongSummary `json:"summary" doc:"Entity counts and completion"`
	UpdatedAt time.Time          `json:"updatedAt" doc:"Last update time"`
}

func toSongListItem(s *domain.Song) SongListItem {
	return SongListItem{
		ID:        s.ID,
		Title:     s.Title,
		Artist:    s.Artist,
		GroupID:   s.GroupID,
		Summary:   s.Summary(),
		UpdatedAt: s.UpdatedAt,
	}
}

// DistributionResponse is the API view of a distribution.
type DistributionResponse struct {
	ID        string            `json:"id" doc:"Distribution ID"`
	SongID    string            `json:"songId" doc:"Distributed song"`
	GroupID   string            `json:"groupId,omitempty" doc:"Performing group"`
	Name      string            `json:"name,omitempty" doc:"Display name"`
	Assignees []domain.Assignee `json:"assignees" doc:"Roster in stable order"`
	Mapping   domain.Mapping    `json:"mapping" doc:"Assignee IDs per part ID"`
	CreatedAt time.Time         `json:"createdAt" doc:"Creation time"`
	UpdatedAt time.Time         `json:"updatedAt" doc:"Last update time"`
}

func toDistributionResponse(d *domain.Distribution) DistributionResponse {
	ids := d.AssigneeIDs()
	roster := make([]domain.Assignee, len(ids))
	for i, id := range ids {
		roster[i] = d.Assignees[id]
	}
	return DistributionResponse{
		ID:        d.ID,
		SongID:    d.SongID,
		GroupID:   d.GroupID,
		Name:      d.Name,
		Assignees: roster,
		Mapping:   d.Mapping,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// FormationResponse is the API view of a formation.
type FormationResponse struct {
	ID             string          `json:"id" doc:"Formation ID"`
	SongID         string          `json:"songId" doc:"Song the formation is staged for"`
	DistributionID string          `json:"distributionId" doc:"Distribution whose roster is placed"`
	Timeline       domain.Timeline `json:"timeline" doc:"Positions per timestamp, aligned with the roster order"`
	CreatedAt      time.Time       `json:"createdAt" doc:"Creation time"`
	UpdatedAt      time.Time       `json:"updatedAt" doc:"Last update time"`
}

func toFormationResponse(f *domain.Formation) FormationResponse {
	return FormationResponse{
		ID:             f.ID,
		SongID:         f.SongID,
		DistributionID: f.DistributionID,
		Timeline:       f.Timeline,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}
