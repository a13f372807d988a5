// Package main provides a read-only tool to inspect a LyricSplit database.
//
// It lists stored songs with their structure summary and any consistency
// violations, then counts distributions and formations.
//
// Usage:
//
//	DB_PATH=~/LyricSplit/data/db go run ./cmd/dbinspect
//	DB_PATH=~/LyricSplit/data/db go run ./cmd/dbinspect --all
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

var showAll = flag.Bool("all", false, "Print every song instead of the first few")

const shownSongs = 5

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/LyricSplit/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	songCount := 0
	brokenSongs := 0
	totalParts := 0

	err = eachDocument(db, "song:", func(key string, val []byte) error {
		var song domain.Song
		if err := json.Unmarshal(val, &song); err != nil {
			return err
		}

		songCount++
		summary := song.Summary()
		totalParts += summary.Parts
		violations := domain.Validate(&song)
		if len(violations) > 0 {
			brokenSongs++
		}

		if !*showAll && songCount > shownSongs && len(violations) == 0 {
			return nil
		}

		fmt.Printf("Song: %s", song.Title)
		if song.Artist != "" {
			fmt.Printf(" (%s)", song.Artist)
		}
		fmt.Println()
		fmt.Printf("  ID: %s\n", song.ID)
		fmt.Printf("  Sections: %d  Lines: %d  Parts: %d\n", summary.Sections, summary.Lines, summary.Parts)
		fmt.Printf("  Duration: %.1f sec  Completion: %d%% (%s)\n",
			float64(summary.Duration)/1000, summary.Completion, summary.Status)
		for _, v := range violations {
			fmt.Printf("    ! %s %s: %s\n", v.Code, v.ID, v.Message)
		}
		fmt.Println()
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating songs: %v", err)
	}

	distCount, err := countDocuments(db, "dist:")
	if err != nil {
		log.Fatalf("Error iterating distributions: %v", err)
	}
	formCount, err := countDocuments(db, "form:")
	if err != nil {
		log.Fatalf("Error iterating formations: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total songs: %d\n", songCount)
	fmt.Printf("Songs with violations: %d\n", brokenSongs)
	fmt.Printf("Total parts: %d\n", totalParts)
	if songCount > 0 {
		fmt.Printf("Average parts per song: %.1f\n", float64(totalParts)/float64(songCount))
	}
	fmt.Printf("Distributions: %d\n", distCount)
	fmt.Printf("Formations: %d\n", formCount)
}

// eachDocument calls fn for every primary document under prefix, skipping
// secondary index entries.
func eachDocument(db *badger.DB, prefix string, fn func(key string, val []byte) error) error {
	indexPrefix := prefix + "idx:"
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if strings.HasPrefix(key, indexPrefix) {
				continue
			}

			err := item.Value(func(val []byte) error {
				return fn(key, val)
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
		}
		return nil
	})
}

func countDocuments(db *badger.DB, prefix string) (int, error) {
	n := 0
	err := eachDocument(db, prefix, func(string, []byte) error {
		n++
		return nil
	})
	return n, err
}
