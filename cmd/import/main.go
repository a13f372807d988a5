// Package main provides a tool to turn a lyric text file into a song.
//
// Blocks separated by blank lines become sections, lines become lines and
// "|" splits a line into parts. A block may start with a "[CHORUS]" style
// header to set the section kind.
//
// Usage:
//
//	go run ./cmd/import --file lyrics.txt --title "Fancy" --artist TWICE --dry-run
//	DB_PATH=~/LyricSplit/data go run ./cmd/import --file lyrics.txt --title "Fancy"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
	"github.com/lyricsplit/lyricsplit-server/internal/search"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
	"github.com/lyricsplit/lyricsplit-server/internal/songedit"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

var (
	file    = flag.String("file", "", "Lyric text file to import (required)")
	title   = flag.String("title", "", "Song title (defaults to the file name)")
	artist  = flag.String("artist", "", "Song artist")
	videoID = flag.String("video-id", "", "Video id handed to the player")
	groupID = flag.String("group-id", "", "Group the song belongs to")
	dataDir = flag.String("data", "", "Data directory (defaults to $DB_PATH or ~/LyricSplit/data)")
	dryRun  = flag.Bool("dry-run", false, "Print the parsed song as JSON instead of storing it")
	verbose = flag.Bool("verbose", false, "Log store and index operations to stderr")
)

func main() {
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read lyrics: %v", err)
	}

	songTitle := *title
	if songTitle == "" {
		base := filepath.Base(*file)
		songTitle = base[:len(base)-len(filepath.Ext(base))]
	}

	if *dryRun {
		song, err := songedit.NewSongFromText("song-preview", songTitle, string(raw), nil)
		if err != nil {
			log.Fatalf("Failed to parse lyrics: %v", err)
		}
		song.Artist = *artist
		song.VideoID = *videoID
		song.GroupID = *groupID
		printSong(song)
		return
	}

	dir := *dataDir
	if dir == "" {
		dir = os.Getenv("DB_PATH")
	}
	if dir == "" {
		dir = os.ExpandEnv("$HOME/LyricSplit/data")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	appLog := logger.New(logger.Config{
		Writer: os.Stderr,
		Format: "pretty",
		Level:  logger.ParseLevel(level),
	})

	fmt.Printf("Opening data directory: %s\n", dir)

	s, err := store.New(filepath.Join(dir, "db"), appLog.Logger, store.NewNoopEmitter())
	if err != nil {
		appLog.Fatal("Failed to open store", "error", err)
	}
	defer s.Close()

	index, _, err := search.NewSongIndex(search.Options{
		DataPath: filepath.Join(dir, "search"),
		Logger:   appLog.Logger,
	})
	if err != nil {
		appLog.Fatal("Failed to open search index", "error", err)
	}
	defer index.Close()
	s.SetSearchIndexer(index)

	songs := service.NewSongService(s, appLog.Logger)
	song, err := songs.CreateSong(context.Background(), service.CreateSongInput{
		Title:   songTitle,
		Artist:  *artist,
		VideoID: *videoID,
		GroupID: *groupID,
		Lyrics:  string(raw),
	})
	if err != nil {
		appLog.Fatal("Failed to store song", "error", err)
	}

	summary := song.Summary()
	fmt.Printf("Imported %q as %s\n", song.Title, song.ID)
	fmt.Printf("  Sections: %d\n", summary.Sections)
	fmt.Printf("  Lines:    %d\n", summary.Lines)
	fmt.Printf("  Parts:    %d\n", summary.Parts)
}

func printSong(song *domain.Song) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(song); err != nil {
		log.Fatalf("Failed to encode song: %v", err)
	}
}
