package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

func setupPublisher(t *testing.T) (*Publisher, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPublisher(rdb, "", logger)

	cleanup := func() {
		_ = rdb.Close()
		mr.Close()
	}
	return p, rdb, cleanup
}

func TestPublisher_PublishesJSON(t *testing.T) {
	p, rdb, cleanup := setupPublisher(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := rdb.Subscribe(ctx, DefaultChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	go p.Start(ctx)

	song := domain.NewSong("song-1", "Test")
	p.Emit(NewSongUpdatedEvent(song))

	select {
	case msg := <-sub.Channel():
		var got struct {
			Type EventType     `json:"type"`
			Data SongEventData `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, EventSongUpdated, got.Type)
		assert.Equal(t, "song-1", got.Data.SongID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublisher_ShutdownDrainsQueue(t *testing.T) {
	p, rdb, cleanup := setupPublisher(t)
	defer cleanup()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, DefaultChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	// Never started: Shutdown publishes what was queued.
	p.Emit(NewSongDeletedEvent("song-1"))
	p.Emit(NewDistributionDeletedEvent("dist-1"))

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(shutdownCtx))

	for _, want := range []EventType{EventSongDeleted, EventDistributionDeleted} {
		select {
		case msg := <-sub.Channel():
			assert.Contains(t, msg.Payload, string(want))
		case <-time.After(2 * time.Second):
			t.Fatalf("missing %s", want)
		}
	}

	// Dropped silently after shutdown.
	p.Emit(NewSongDeletedEvent("song-2"))
	require.NoError(t, p.Shutdown(shutdownCtx))
}

func TestPublisher_IgnoresForeignEvents(t *testing.T) {
	p, _, cleanup := setupPublisher(t)
	defer cleanup()

	p.Emit("not an event")
	assert.Empty(t, p.events)
}

func TestNoop(t *testing.T) {
	var e Emitter = Noop{}
	e.Emit(NewSongDeletedEvent("song-1"))
}
