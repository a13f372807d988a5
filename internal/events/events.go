// Package events publishes document change events so that other processes
// (editors, players, the presentation screen) can refresh what they show.
package events

import (
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// EventType names a change event.
type EventType string

const (
	// EventSongCreated is published when a song is first stored.
	EventSongCreated EventType = "song.created"
	// EventSongUpdated is published after every persisted song mutation.
	EventSongUpdated EventType = "song.updated"
	// EventSongDeleted is published when a song is removed.
	EventSongDeleted EventType = "song.deleted"

	EventDistributionCreated EventType = "distribution.created"
	EventDistributionUpdated EventType = "distribution.updated"
	EventDistributionDeleted EventType = "distribution.deleted"

	EventFormationCreated EventType = "formation.created"
	EventFormationUpdated EventType = "formation.updated"
	EventFormationDeleted EventType = "formation.deleted"
)

// Event is the JSON message published for one change.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// SongEventData carries the song summary, which is enough for list views to
// update without fetching the song.
type SongEventData struct {
	SongID    string             `json:"songId"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Summary   domain.SongSummary `json:"summary"`
}

// DistributionEventData identifies a changed distribution.
type DistributionEventData struct {
	DistributionID string    `json:"distributionId"`
	SongID         string    `json:"songId"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FormationEventData identifies a changed formation.
type FormationEventData struct {
	FormationID    string    `json:"formationId"`
	DistributionID string    `json:"distributionId"`
	SongID         string    `json:"songId"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DeletedEventData identifies a removed document.
type DeletedEventData struct {
	ID string `json:"id"`
}

func songEvent(t EventType, song *domain.Song) Event {
	return Event{
		Type: t,
		Data: SongEventData{
			SongID:    song.ID,
			UpdatedAt: song.UpdatedAt,
			Summary:   song.Summary(),
		},
		Timestamp: time.Now(),
	}
}

// NewSongCreatedEvent creates a song.created event.
func NewSongCreatedEvent(song *domain.Song) Event {
	return songEvent(EventSongCreated, song)
}

// NewSongUpdatedEvent creates a song.updated event.
func NewSongUpdatedEvent(song *domain.Song) Event {
	return songEvent(EventSongUpdated, song)
}

// NewSongDeletedEvent creates a song.deleted event.
func NewSongDeletedEvent(songID string) Event {
	return Event{Type: EventSongDeleted, Data: DeletedEventData{ID: songID}, Timestamp: time.Now()}
}

func distributionEvent(t EventType, d *domain.Distribution) Event {
	return Event{
		Type: t,
		Data: DistributionEventData{
			DistributionID: d.ID,
			SongID:         d.SongID,
			UpdatedAt:      d.UpdatedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewDistributionCreatedEvent creates a distribution.created event.
func NewDistributionCreatedEvent(d *domain.Distribution) Event {
	return distributionEvent(EventDistributionCreated, d)
}

// NewDistributionUpdatedEvent creates a distribution.updated event.
func NewDistributionUpdatedEvent(d *domain.Distribution) Event {
	return distributionEvent(EventDistributionUpdated, d)
}

// NewDistributionDeletedEvent creates a distribution.deleted event.
func NewDistributionDeletedEvent(distributionID string) Event {
	return Event{Type: EventDistributionDeleted, Data: DeletedEventData{ID: distributionID}, Timestamp: time.Now()}
}

func formationEvent(t EventType, f *domain.Formation) Event {
	return Event{
		Type: t,
		Data: FormationEventData{
			FormationID:    f.ID,
			DistributionID: f.DistributionID,
			SongID:         f.SongID,
			UpdatedAt:      f.UpdatedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewFormationCreatedEvent creates a formation.created event.
func NewFormationCreatedEvent(f *domain.Formation) Event {
	return formationEvent(EventFormationCreated, f)
}

// NewFormationUpdatedEvent creates a formation.updated event.
func NewFormationUpdatedEvent(f *domain.Formation) Event {
	return formationEvent(EventFormationUpdated, f)
}

// NewFormationDeletedEvent creates a formation.deleted event.
func NewFormationDeletedEvent(formationID string) Event {
	return Event{Type: EventFormationDeleted, Data: DeletedEventData{ID: formationID}, Timestamp: time.Now()}
}
